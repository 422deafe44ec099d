package expander

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	calls [][]string
	fail  map[int]error // call ordinal -> error
}

func (s *stubRetriever) Retrieve(ctx context.Context, topics []string, k int) (string, error) {
	call := len(s.calls)
	s.calls = append(s.calls, topics)
	if err := s.fail[call]; err != nil {
		return "", err
	}
	return fmt.Sprintf("CONTEXT FOR TOPIC(S): %s\n\n", strings.Join(topics, ", ")), nil
}

type stubSuggester func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f stubSuggester) Suggest(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

func TestExpandSuccess(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		assert.Equal(t, DefaultMaxTokens, maxTokens)
		assert.Contains(t, prompt, "comma-separated")
		return "linear algebra, eigenvalues", nil
	})
	e := New(r, s, 0, 0)

	res, err := e.Expand(context.Background(), []string{"vectors"})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Note)
	assert.Equal(t, []string{"vectors", "linear algebra", "eigenvalues"}, res.Topics)
	assert.Contains(t, res.Context, "CONTEXT FOR TOPIC(S): vectors")
	assert.Contains(t, res.Context, "## Additional Context")
	assert.Contains(t, res.Context, "CONTEXT FOR TOPIC(S): linear algebra, eigenvalues")
	require.Len(t, r.calls, 2)
	assert.Equal(t, []string{"linear algebra", "eigenvalues"}, r.calls[1])
}

func TestExpandSuggesterFailureDegrades(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("model unavailable")
	})
	e := New(r, s, 0, 0)

	res, err := e.Expand(context.Background(), []string{"vectors"})
	require.NoError(t, err, "suggester failures must never surface")
	assert.True(t, res.Degraded)
	assert.Contains(t, res.Note, "model unavailable")
	assert.Equal(t, "CONTEXT FOR TOPIC(S): vectors\n\n", res.Context)
	assert.Equal(t, []string{"vectors"}, res.Topics)
	assert.Len(t, r.calls, 1, "no second retrieval on degradation")
}

func TestExpandEmptySuggestionsDegrade(t *testing.T) {
	for _, raw := range []string{"", "   ", ",,,", "\n\n"} {
		r := &stubRetriever{fail: map[int]error{}}
		s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
			return raw, nil
		})
		res, err := New(r, s, 0, 0).Expand(context.Background(), []string{"a"})
		require.NoError(t, err)
		assert.True(t, res.Degraded, "raw=%q", raw)
		assert.Contains(t, res.Note, "no usable topics")
	}
}

func TestExpandDuplicateSuggestionsDropped(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "Vectors, vectors, matrices", nil
	})
	res, err := New(r, s, 0, 0).Expand(context.Background(), []string{"vectors"})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, []string{"vectors", "matrices"}, res.Topics)
}

func TestExpandCapsSuggestedTopics(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "a, b, c, d, e, f", nil
	})
	res, err := New(r, s, 0, 0).Expand(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "a", "b", "c"}, res.Topics)
}

func TestExpandInitialRetrievalErrorPropagates(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{0: errors.New("index corrupt")}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		t.Fatal("suggester must not run when initial retrieval fails")
		return "", nil
	})
	_, err := New(r, s, 0, 0).Expand(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestExpandSecondRetrievalFailureDegrades(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{1: errors.New("boom")}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "more topics", nil
	})
	res, err := New(r, s, 0, 0).Expand(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "CONTEXT FOR TOPIC(S): a\n\n", res.Context)
}

func TestExpandTimeoutDegrades(t *testing.T) {
	r := &stubRetriever{fail: map[int]error{}}
	s := stubSuggester(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "too late", nil
		}
	})
	e := New(r, s, 50, 10*time.Millisecond)

	res, err := e.Expand(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.Context)
}

func TestParseTopicsTrimsQuotesAndCase(t *testing.T) {
	got := parseTopics(` "Linear Algebra" , eigenvalues., `, []string{"Eigenvalues"})
	assert.Equal(t, []string{"Linear Algebra"}, got)
}
