package domain

// Document is a single text file loaded from the vault.
type Document struct {
	Path    string
	Content string
}

// Chunk is a bounded span of a document's text with its provenance.
// Chunks are immutable once created; Index is the zero-based position of
// the chunk among all chunks emitted from the same source.
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}
