// Package hashing provides a deterministic, fully local embedder based on
// token feature hashing. It needs no corpus preparation and no network, so
// a persisted index can always be re-queried with the exact embedder that
// built it.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Embedder hashes tokens into a fixed number of signed buckets and
// L2-normalizes the result. Identical texts always produce identical
// unit vectors.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
	}
}

// Name identifies the implementation and its dimension so a persisted
// index can be validated against the embedder querying it.
func (e *Embedder) Name() string { return fmt.Sprintf("hashing-v1/%d", e.dimension) }

func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns one unit vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *Embedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 && strings.TrimSpace(text) != "" {
		// no word tokens; hash the raw text so the vector is never zero
		tokens = []string{strings.TrimSpace(text)}
	}
	for _, tok := range tokens {
		bucket, sign := hashToken(tok)
		vec[bucket%uint32(e.dimension)] += sign
	}
	normalize(vec)
	return vec
}

// hashToken maps a token to a bucket and a +/-1 sign. The sign bit keeps
// colliding tokens from always reinforcing each other.
func hashToken(tok string) (uint32, float32) {
	h := fnv.New32a()
	h.Write([]byte(tok))
	sum := h.Sum32()
	sign := float32(1)
	if sum&1 == 1 {
		sign = -1
	}
	return sum >> 1, sign
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
