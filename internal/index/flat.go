// Package index implements a flat inner-product vector index. Stored
// vectors are unit-normalized by the embedder, so inner product equals
// cosine similarity; the index never renormalizes on insertion.
package index

import (
	"fmt"
	"sort"
)

// Hit is one search result: a position into the paired metadata store and
// the similarity score of the stored vector at that position.
type Hit struct {
	Pos   int
	Score float32
}

// Flat stores vectors in insertion order and searches them with a full
// scan. The vector at position i corresponds to the chunk at position i
// in the paired metadata store; Add must be called in lockstep with the
// store's Append. Immutable after build, so concurrent searches are safe.
type Flat struct {
	dimension int
	embedder  string
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimension, tagged
// with the name of the embedder that produces them.
func New(dimension int, embedder string) *Flat {
	return &Flat{dimension: dimension, embedder: embedder}
}

func (f *Flat) Dimension() int   { return f.dimension }
func (f *Flat) Embedder() string { return f.embedder }
func (f *Flat) Len() int         { return len(f.vectors) }

// Add appends vectors in order. The caller guarantees the paired metadata
// store receives the matching chunks in the same order.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dimension {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.dimension)
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns up to k positions ranked by descending inner product,
// ties broken by ascending position. An empty index yields an empty
// result; k larger than the index returns everything.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), f.dimension)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return []Hit{}, nil
	}
	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Pos: i, Score: dot(query, v)}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Pos < hits[j].Pos
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
