package chunker

import (
	"strings"
	"unicode/utf8"

	"vaultrag/internal/domain"
)

// Splitter cuts document text into overlapping spans of at most size
// runes, preferring paragraph, line and word boundaries over cutting
// mid-word. Consecutive spans share up to overlap runes.
type Splitter struct {
	size    int
	overlap int
}

// separators tried in order; a hard rune window is the last resort.
var separators = []string{"\n\n", "\n", " "}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split emits the chunks of doc in order. Spans that are empty after
// trimming are dropped; Index counts emitted chunks, so it stays dense
// even when spans are dropped.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	spans := s.split(doc.Content, separators)
	chunks := make([]domain.Chunk, 0, len(spans))
	for _, span := range spans {
		text := strings.TrimSpace(span)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Text:   text,
			Source: doc.Path,
			Index:  len(chunks),
		})
	}
	return chunks
}

func (s *Splitter) split(text string, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.size {
		return []string{text}
	}
	if len(seps) == 0 {
		return s.window(text)
	}
	sep := seps[0]
	if !strings.Contains(text, sep) {
		return s.split(text, seps[1:])
	}
	var pieces []string
	for _, part := range strings.Split(text, sep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.size {
			pieces = append(pieces, s.split(part, seps[1:])...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return s.merge(pieces, sep)
}

// merge packs pieces into spans of at most size runes, seeding each new
// span with the trailing pieces of the previous one up to overlap runes.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	var spans []string
	var cur []string
	curLen := 0
	for _, p := range pieces {
		pl := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+sepLen+pl > s.size {
			spans = append(spans, strings.Join(cur, sep))
			var keep []string
			keepLen := 0
			for i := len(cur) - 1; i >= 0; i-- {
				l := utf8.RuneCountInString(cur[i])
				if keepLen+l > s.overlap {
					break
				}
				keep = append([]string{cur[i]}, keep...)
				keepLen += l + sepLen
			}
			cur = keep
			curLen = keepLen
		}
		if curLen > 0 {
			curLen += sepLen
		}
		cur = append(cur, p)
		curLen += pl
	}
	if len(cur) > 0 {
		spans = append(spans, strings.Join(cur, sep))
	}
	return spans
}

// window is the fallback for text with no usable separators: fixed rune
// windows advancing by size-overlap.
func (s *Splitter) window(text string) []string {
	runes := []rune(text)
	step := s.size - s.overlap
	var spans []string
	for i := 0; i < len(runes); i += step {
		end := i + s.size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return spans
}
