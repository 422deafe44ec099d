package domain

import "context"

// Chunker splits a document into chunks suitable for indexing.
// An empty document yields no chunks, not an error.
type Chunker interface {
	Split(doc Document) []Chunk
}

// Embedder converts texts into unit-length vectors, one per input, in
// input order. The same embedder must be used at build time and query
// time; Name identifies the implementation and its parameters so a
// persisted index can be checked against the embedder querying it.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Suggester is the narrow capability the expander needs from a language
// model: given a prompt and a token budget, return response text or fail.
type Suggester interface {
	Suggest(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
