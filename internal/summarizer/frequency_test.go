package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Vectors have magnitude and direction. The weather is nice. " +
		"Vectors can be added together. Vectors support scalar multiplication."
	f := NewFrequency()

	out, err := f.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.SplitAfter(out, ".")
	assert.Contains(t, out, "Vectors")
	// selected sentences appear in source order
	first := strings.Index(text, strings.TrimSpace(sentences[0]))
	second := strings.Index(text, strings.TrimSpace(strings.Join(sentences[1:], "")))
	assert.LessOrEqual(t, first, second)
}

func TestSummarizeShortText(t *testing.T) {
	f := NewFrequency()
	out, err := f.Summarize("no terminal punctuation here", 5)
	require.NoError(t, err)
	assert.Equal(t, "no terminal punctuation here", out)
}

func TestSummarizeDefaultsMaxSentences(t *testing.T) {
	f := NewFrequency()
	out, err := f.Summarize("One. Two. Three.", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
