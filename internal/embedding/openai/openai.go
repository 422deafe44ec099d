// Package openai provides an Embedder backed by the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// batchSize caps how many inputs go into a single embeddings request.
	batchSize = 100
	// maxInFlight caps concurrent embeddings requests.
	maxInFlight = 4
)

// Embedder calls the embeddings API and L2-normalizes the results
// client-side, so stored vectors always satisfy the unit-norm contract
// regardless of what the backend returns.
type Embedder struct {
	client    *openai.Client
	model     string
	dimension int
}

func New(model string) (*Embedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	dim := 1536
	if model == string(openai.LargeEmbedding3) {
		dim = 3072
	}
	return &Embedder{
		client:    openai.NewClient(key),
		model:     model,
		dimension: dim,
	}, nil
}

func (e *Embedder) Name() string { return "openai/" + e.model }

func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns one unit vector per input, in input order. Batches run
// concurrently under a semaphore; each batch writes into its own region
// of the result slice, so order is preserved. Any API failure aborts the
// whole call; no partial results are returned.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var spans [][2]int
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		spans = append(spans, [2]int{start, end})
	}

	sem := make(chan struct{}, maxInFlight)
	errCh := make(chan error, len(spans))
	for _, span := range spans {
		sem <- struct{}{}
		go func(start, end int) {
			defer func() { <-sem }()
			batch, err := e.embedBatch(ctx, texts[start:end])
			if err == nil {
				copy(vectors[start:end], batch)
			}
			errCh <- err
		}(span[0], span[1])
	}

	var firstErr error
	for range spans {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		l2normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}

func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
