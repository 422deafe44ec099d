// Package expander implements the two-phase retrieval protocol: retrieve,
// ask a language model for related topics, retrieve again, merge. The
// model call is the only unreliable step, so it sits behind a fail-soft
// boundary: the caller always gets a usable context document.
package expander

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vaultrag/internal/domain"
)

const (
	// DefaultMaxTokens bounds the suggestion request.
	DefaultMaxTokens = 100
	// DefaultTimeout bounds how long the suggestion call may hang.
	DefaultTimeout = 15 * time.Second

	// maxSuggested caps how many suggested topics feed the second pass.
	maxSuggested = 3
	// maxPromptRunes caps how much of the initial context goes into the
	// suggestion prompt.
	maxPromptRunes = 4000
)

// ContextRetriever is the subset of the retriever the expander needs.
type ContextRetriever interface {
	Retrieve(ctx context.Context, topics []string, k int) (string, error)
}

// Result is the outcome of one expansion call. When Degraded is true the
// expansion step failed, Context is the initial retrieval unchanged, and
// Note says why.
type Result struct {
	Context  string
	Topics   []string
	Degraded bool
	Note     string
}

// Expander is stateless across calls; each Expand invocation is
// independent.
type Expander struct {
	retriever ContextRetriever
	suggester domain.Suggester
	maxTokens int
	timeout   time.Duration
}

func New(retriever ContextRetriever, suggester domain.Suggester, maxTokens int, timeout time.Duration) *Expander {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Expander{retriever: retriever, suggester: suggester, maxTokens: maxTokens, timeout: timeout}
}

// Expand retrieves context for topics, then tries one bounded model call
// to suggest related topics and retrieves those too. A failed initial
// retrieval is a real error; everything after it degrades gracefully and
// never surfaces the underlying failure.
func (e *Expander) Expand(ctx context.Context, topics []string) (*Result, error) {
	initial, err := e.retriever.Retrieve(ctx, topics, 0)
	if err != nil {
		return nil, err
	}

	suggested, reason := e.suggest(ctx, initial, topics)
	if reason != "" {
		return &Result{Context: initial, Topics: topics, Degraded: true, Note: reason}, nil
	}

	extra, err := e.retriever.Retrieve(ctx, suggested, 0)
	if err != nil {
		return &Result{
			Context:  initial,
			Topics:   topics,
			Degraded: true,
			Note:     "retrieval of suggested topics failed: " + err.Error(),
		}, nil
	}

	var doc strings.Builder
	doc.WriteString(initial)
	doc.WriteString("## Additional Context\n\n")
	doc.WriteString(extra)
	return &Result{
		Context: doc.String(),
		Topics:  append(append([]string{}, topics...), suggested...),
	}, nil
}

// suggest runs the bounded model call and parses its answer. It returns
// either the suggested topics or a non-empty degradation reason.
func (e *Expander) suggest(ctx context.Context, initial string, topics []string) ([]string, string) {
	sctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.suggester.Suggest(sctx, buildPrompt(initial), e.maxTokens)
	if err != nil {
		return nil, "topic suggestion failed: " + err.Error()
	}
	suggested := parseTopics(raw, topics)
	if len(suggested) == 0 {
		return nil, "model returned no usable topics"
	}
	return suggested, ""
}

func buildPrompt(initial string) string {
	return fmt.Sprintf(
		"Based on the following context, suggest 2 to 3 related topics that would broaden it.\n"+
			"Respond with ONLY a comma-separated list of topics, nothing else.\n\nContext:\n%s",
		truncateRunes(initial, maxPromptRunes))
}

// parseTopics splits a comma-separated model response, trimming
// whitespace and stray quoting, dropping empties and anything already in
// the original topic list.
func parseTopics(raw string, original []string) []string {
	seen := make(map[string]bool, len(original))
	for _, t := range original {
		seen[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var topics []string
	for _, part := range strings.Split(strings.ReplaceAll(raw, "\n", ","), ",") {
		topic := strings.Trim(strings.TrimSpace(part), `"'.`)
		key := strings.ToLower(topic)
		if topic == "" || seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, topic)
		if len(topics) == maxSuggested {
			break
		}
	}
	return topics
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
