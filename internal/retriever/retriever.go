// Package retriever turns topic queries into a labeled context document
// assembled from the nearest chunks in the index.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"vaultrag/internal/domain"
	"vaultrag/internal/index"
	"vaultrag/internal/metadata"
)

// DefaultTopK is used when a caller passes k <= 0.
const DefaultTopK = 5

// Retriever holds the loaded, immutable index/metadata pair and the
// query-time embedder. It is constructed once at startup and is safe for
// concurrent use.
type Retriever struct {
	index    *index.Flat
	meta     *metadata.Store
	embedder domain.Embedder
	topK     int
}

func New(idx *index.Flat, meta *metadata.Store, embedder domain.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{index: idx, meta: meta, embedder: embedder, topK: topK}
}

// Lookup returns the raw top-k results for a single topic.
func (r *Retriever) Lookup(ctx context.Context, topic string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = r.topK
	}
	vecs, err := r.embedder.Embed(ctx, []string{topic})
	if err != nil {
		return nil, fmt.Errorf("embed topic %q: %w", topic, err)
	}
	hits, err := r.index.Search(vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search topic %q: %w", topic, err)
	}
	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SearchResult{Chunk: r.meta.Get(h.Pos), Score: h.Score}
	}
	return results, nil
}

// Retrieve renders a context document for the topics in order: a
// top-level header, then one labeled block per topic with each hit cited
// as [source#idx] followed by its text, hits by descending score. Topics
// are embedded one at a time so a failure names the topic that caused
// it; any failure aborts the whole call. No topics yields just the
// header.
func (r *Retriever) Retrieve(ctx context.Context, topics []string, k int) (string, error) {
	var doc strings.Builder
	fmt.Fprintf(&doc, "CONTEXT FOR TOPIC(S): %s\n\n", strings.Join(topics, ", "))
	for _, topic := range topics {
		results, err := r.Lookup(ctx, topic, k)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&doc, "## Context for TOPIC: %s\n\n", topic)
		blocks := make([]string, len(results))
		for i, res := range results {
			blocks[i] = fmt.Sprintf("[%s#%d]\n%s", res.Chunk.Source, res.Chunk.Index, res.Chunk.Text)
		}
		doc.WriteString(strings.Join(blocks, "\n\n"))
		doc.WriteString("\n\n")
	}
	return doc.String(), nil
}
