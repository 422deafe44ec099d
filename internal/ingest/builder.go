// Package ingest builds the persisted index/metadata pair from a
// directory of documents.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vaultrag/internal/domain"
	"vaultrag/internal/index"
	"vaultrag/internal/metadata"
)

// Builder runs the single-threaded build pipeline: walk, chunk, embed,
// append to index and metadata as a unit.
type Builder struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	summarizer domain.Summarizer
	maxSummary int
}

// Result is a freshly built index/metadata pair. The pair only becomes
// valid for querying once Persist has written both files.
type Result struct {
	Index     *index.Flat
	Meta      *metadata.Store
	Summary   string
	Documents int
}

func NewBuilder(chunker domain.Chunker, embedder domain.Embedder, summarizer domain.Summarizer, maxSummary int) *Builder {
	return &Builder{chunker: chunker, embedder: embedder, summarizer: summarizer, maxSummary: maxSummary}
}

// Build walks dir, treating every text-bearing file as one document, and
// produces the aligned index/metadata pair. Embedding failures abort the
// build before anything is inserted, so a partial pair is never produced.
func (b *Builder) Build(ctx context.Context, dir string) (*Result, error) {
	docs, err := loadDocuments(dir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found under %s", dir)
	}

	var chunks []domain.Chunk
	var texts []string
	for _, doc := range docs {
		for _, ch := range b.chunker.Split(doc) {
			chunks = append(chunks, ch)
			texts = append(texts, ch.Text)
		}
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	idx := index.New(b.embedder.Dimension(), b.embedder.Name())
	meta := metadata.NewStore()
	if err := idx.Add(vectors); err != nil {
		return nil, err
	}
	meta.Append(chunks...)

	summary, err := b.summarize(docs)
	if err != nil {
		return nil, err
	}
	return &Result{Index: idx, Meta: meta, Summary: summary, Documents: len(docs)}, nil
}

// summarize condenses each document separately, one labeled line per
// document, splitting the sentence budget across them so a long corpus
// still yields a short report.
func (b *Builder) summarize(docs []domain.Document) (string, error) {
	if b.summarizer == nil {
		return "", nil
	}
	perDoc := b.maxSummary / len(docs)
	if perDoc < 1 {
		perDoc = 1
	}
	var lines []string
	for _, doc := range docs {
		s, err := b.summarizer.Summarize(doc.Content, perDoc)
		if err != nil {
			return "", fmt.Errorf("summarize %s: %w", doc.Path, err)
		}
		if s == "" {
			continue
		}
		lines = append(lines, doc.Path+": "+s)
	}
	return strings.Join(lines, "\n"), nil
}

// Persist writes both halves of the pair. The files are only meaningful
// together; callers should treat a failure here as invalidating both.
func (r *Result) Persist(indexPath, metaPath string) error {
	if err := r.Index.Save(indexPath); err != nil {
		return err
	}
	return r.Meta.Save(metaPath)
}

// textExtensions are the file types ingested as documents.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

func loadDocuments(dir string) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, domain.Document{Path: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, nil
}
