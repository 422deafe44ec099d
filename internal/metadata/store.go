// Package metadata holds the ordered chunk records paired positionally
// with the vectors of a flat index: the chunk at position i describes the
// vector at position i.
package metadata

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"vaultrag/internal/domain"
)

// Store is an append-only ordered list of chunks. It is written once at
// build time and read-only afterwards, so concurrent readers need no
// locking.
type Store struct {
	chunks []domain.Chunk
}

func NewStore() *Store { return &Store{} }

func (s *Store) Append(chunks ...domain.Chunk) {
	s.chunks = append(s.chunks, chunks...)
}

// Get returns the chunk at pos. Positions come from index search results,
// which are bounded by construction; an out-of-range pos is a programming
// error and panics.
func (s *Store) Get(pos int) domain.Chunk { return s.chunks[pos] }

func (s *Store) Len() int { return len(s.chunks) }

// Save writes the chunk list to path, preserving order exactly. The file
// is written to a temporary name and renamed into place so a partial
// write never replaces a valid file.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(s.chunks); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a chunk list previously written by Save.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata file: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	if err := gob.NewDecoder(f).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("decode metadata file %s: %w", path, err)
	}
	return &Store{chunks: chunks}, nil
}
