// Package summarizer produces the short per-document summaries printed
// after ingestion.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Frequency ranks sentences by normalized token frequency, stopwords
// excluded, and keeps the top ones in their original order.
type Frequency struct {
	stopwords map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{stopwords: stopwords()}
}

func (f *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range f.tokens(sent) {
			freq[tok]++
		}
	}
	peak := 0.0
	for _, v := range freq {
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for k := range freq {
			freq[k] /= peak
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := f.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if n := float64(len(toks)); n > 0 {
			score /= math.Sqrt(n)
		}
		ranked[i] = scored{i, score}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	keep := make([]int, maxSentences)
	for i := range keep {
		keep[i] = ranked[i].idx
	}
	sort.Ints(keep)

	parts := make([]string, len(keep))
	for i, idx := range keep {
		parts[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(parts, " "), nil
}

func (f *Frequency) tokens(text string) []string {
	var toks []string
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, skip := f.stopwords[tok]; skip {
			continue
		}
		toks = append(toks, tok)
	}
	return toks
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "than", "so",
		"such", "into", "about", "between", "through", "during", "before",
		"after", "out", "off", "own", "same", "too", "very", "can", "will",
		"just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
