package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultrag/internal/domain"
)

func TestSplitWordBoundaries(t *testing.T) {
	s := NewSplitter(4, 0)
	chunks := s.Split(domain.Document{Path: "doc1.txt", Content: "AAAA BBBB CCCC"})

	require.Len(t, chunks, 3)
	assert.Equal(t, "AAAA", chunks[0].Text)
	assert.Equal(t, "BBBB", chunks[1].Text)
	assert.Equal(t, "CCCC", chunks[2].Text)
	for i, c := range chunks {
		assert.Equal(t, "doc1.txt", c.Source)
		assert.Equal(t, i, c.Index)
	}
}

func TestSplitSingleSmallDocument(t *testing.T) {
	s := NewSplitter(4, 0)
	chunks := s.Split(domain.Document{Path: "doc2.txt", Content: "DDDD"})

	require.Len(t, chunks, 1)
	assert.Equal(t, domain.Chunk{Text: "DDDD", Source: "doc2.txt", Index: 0}, chunks[0])
}

func TestSplitEmptyDocument(t *testing.T) {
	s := NewSplitter(500, 50)
	assert.Empty(t, s.Split(domain.Document{Path: "empty.txt", Content: ""}))
	assert.Empty(t, s.Split(domain.Document{Path: "blank.txt", Content: "  \n\n \t"}))
}

func TestSplitCoversAllWords(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	content := strings.Join(words, " ")
	s := NewSplitter(20, 5)
	chunks := s.Split(domain.Document{Path: "d", Content: content})

	require.NotEmpty(t, chunks)
	joined := ""
	for _, c := range chunks {
		joined += " " + c.Text
	}
	for _, w := range words {
		assert.Contains(t, joined, w)
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 20)
	}
}

func TestSplitOverlapCarriesTrailingWords(t *testing.T) {
	s := NewSplitter(11, 5)
	chunks := s.Split(domain.Document{Path: "d", Content: "one two three four five"})

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Text)
		last := prevWords[len(prevWords)-1]
		assert.True(t, strings.HasPrefix(chunks[i].Text, last),
			"chunk %d %q should start with overlap word %q", i, chunks[i].Text, last)
	}
}

func TestSplitLongUnbrokenText(t *testing.T) {
	content := strings.Repeat("x", 25)
	s := NewSplitter(10, 2)
	chunks := s.Split(domain.Document{Path: "d", Content: content})

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 10)
	}
	// windows advance by size-overlap, so the whole string is covered
	total := 0
	for _, c := range chunks {
		total += len(c.Text)
	}
	assert.GreaterOrEqual(t, total, 25)
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	content := "first paragraph here\n\nsecond paragraph here"
	s := NewSplitter(25, 0)
	chunks := s.Split(domain.Document{Path: "d", Content: content})

	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph here", chunks[0].Text)
	assert.Equal(t, "second paragraph here", chunks[1].Text)
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, 500, s.size)
	assert.Equal(t, 0, s.overlap)

	s = NewSplitter(100, 100)
	assert.Equal(t, 10, s.overlap)
}
