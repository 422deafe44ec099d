package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vaultrag/internal/metadata"
)

// Index file format, little-endian throughout:
//
//	magic "VRIX" | uint32 version | uint16 tag length | tag bytes |
//	uint32 dimension | uint32 count | count*dimension float32
//
// The tag is the Name of the embedder that produced the vectors.
const fileVersion = 1

var fileMagic = [4]byte{'V', 'R', 'I', 'X'}

// Configuration errors surfaced when loading a persisted index pair.
var (
	ErrBadFormat        = errors.New("unrecognized index file format")
	ErrSizeMismatch     = errors.New("index and metadata sizes differ")
	ErrEmbedderMismatch = errors.New("index was built with a different embedder")
)

// Save writes the index to path with an exact float32 round-trip. The
// file is written to a temporary name and renamed into place.
func (f *Flat) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	err = writeHeader(w, f)
	if err == nil {
		for _, v := range f.vectors {
			if err = binary.Write(w, binary.LittleEndian, v); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads an index previously written by Save.
func Load(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	f, count, headerSize, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read index file %s: %w", path, err)
	}
	// The header's count and dimension are untrusted until they agree
	// with the actual file size; otherwise a corrupt count could demand
	// an enormous allocation here.
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	want := int64(headerSize) + int64(count)*int64(f.dimension)*4
	if count > 0 && f.dimension == 0 {
		return nil, fmt.Errorf("%w: %d vectors of dimension 0", ErrBadFormat, count)
	}
	if info.Size() != want {
		return nil, fmt.Errorf("%w: file %s holds %d bytes, header promises %d",
			ErrBadFormat, path, info.Size(), want)
	}
	f.vectors = make([][]float32, count)
	for i := range f.vectors {
		v := make([]float32, f.dimension)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("read index file %s: vector %d: %w", path, i, err)
		}
		f.vectors[i] = v
	}
	return f, nil
}

// Open loads an index and its paired metadata file together and
// cross-checks them: the two files are only meaningful as a pair, and a
// mismatch is a configuration error to surface at startup, not at first
// query. embedder is the Name of the embedder that will issue queries.
func Open(indexPath, metaPath, embedder string) (*Flat, *metadata.Store, error) {
	f, err := Load(indexPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := metadata.Load(metaPath)
	if err != nil {
		return nil, nil, err
	}
	if f.Len() != store.Len() {
		return nil, nil, fmt.Errorf("%w: index has %d vectors, metadata has %d chunks",
			ErrSizeMismatch, f.Len(), store.Len())
	}
	if f.embedder != embedder {
		return nil, nil, fmt.Errorf("%w: index tagged %q, querying with %q",
			ErrEmbedderMismatch, f.embedder, embedder)
	}
	return f, store, nil
}

func writeHeader(w *bufio.Writer, f *Flat) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(fileVersion)); err != nil {
		return err
	}
	tag := []byte(f.embedder)
	if err := binary.Write(w, binary.LittleEndian, uint16(len(tag))); err != nil {
		return err
	}
	if _, err := w.Write(tag); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(f.dimension)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(len(f.vectors)))
}

// readHeader returns the decoded index shell, the vector count, and the
// total header size in bytes.
func readHeader(r *bufio.Reader) (*Flat, int, int, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, 0, 0, err
	}
	if magic != fileMagic {
		return nil, 0, 0, ErrBadFormat
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, 0, err
	}
	if version != fileVersion {
		return nil, 0, 0, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, version)
	}
	var tagLen uint16
	if err := binary.Read(r, binary.LittleEndian, &tagLen); err != nil {
		return nil, 0, 0, err
	}
	tag := make([]byte, tagLen)
	if _, err := io.ReadFull(r, tag); err != nil {
		return nil, 0, 0, err
	}
	var dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, 0, 0, err
	}
	headerSize := 4 + 4 + 2 + int(tagLen) + 4 + 4
	return New(int(dim), string(tag)), int(count), headerSize, nil
}
