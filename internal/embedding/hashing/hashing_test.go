package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	e := New(256)
	a, err := e.Embed(context.Background(), []string{"vectors and matrices"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"vectors and matrices"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedUnitNorm(t *testing.T) {
	e := New(128)
	vecs, err := e.Embed(context.Background(), []string{
		"AAAA",
		"the quick brown fox jumps over the lazy dog",
		"§§§", // no word tokens, falls back to raw text hashing
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "vector %d", i)
	}
}

func TestEmbedIdenticalTextsScoreOne(t *testing.T) {
	e := New(256)
	vecs, err := e.Embed(context.Background(), []string{"AAAA", "AAAA"})
	require.NoError(t, err)

	var dot float64
	for i := range vecs[0] {
		dot += float64(vecs[0][i]) * float64(vecs[1][i])
	}
	assert.InDelta(t, 1.0, dot, 1e-6)
}

func TestEmbedDistinctTextsDiffer(t *testing.T) {
	e := New(256)
	vecs, err := e.Embed(context.Background(), []string{"AAAA", "BBBB"})
	require.NoError(t, err)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestEmbedEmptyBatch(t *testing.T) {
	e := New(64)
	vecs, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedCancelledContext(t *testing.T) {
	e := New(64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, []string{"a"})
	assert.Error(t, err)
}

func TestNameIncludesDimension(t *testing.T) {
	assert.Equal(t, "hashing-v1/256", New(256).Name())
	assert.Equal(t, "hashing-v1/256", New(0).Name())
	assert.Equal(t, 256, New(0).Dimension())
}
