package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPrepareRejectsEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Prepare(context.Background(), nil))
	assert.Error(t, e.Prepare(context.Background(), []string{"the and of"}))
}

func TestEmbeddingsAreNormalizedAndFixedDimension(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, []string{
		"Anxiety is treated with CBT.",
		"Insomnia improves with sleep hygiene.",
	}))

	v, err := e.Embed(ctx, "How is anxiety treated?")
	require.NoError(t, err)
	assert.Len(t, v, e.Dimension())
	assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-9)

	zero, err := e.Embed(ctx, "completely unrelated words")
	require.NoError(t, err)
	assert.Len(t, zero, e.Dimension())
	assert.Zero(t, dot(zero, zero))
}

func TestSimilarTextScoresHigher(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	docs := []string{
		"Anxiety is treated with CBT and gradual exposure.",
		"Insomnia improves with consistent sleep hygiene.",
	}
	require.NoError(t, e.Prepare(ctx, docs))

	q, err := e.Embed(ctx, "treatment for anxiety")
	require.NoError(t, err)
	a, _ := e.Embed(ctx, docs[0])
	b, _ := e.Embed(ctx, docs[1])

	assert.Greater(t, dot(q, a), dot(q, b))
}

func TestTokenizerKeepsArabicWords(t *testing.T) {
	e := NewEmbedder()
	toks := e.tokenize("العلاج المعرفي في القلق")
	assert.Equal(t, []string{"العلاج", "المعرفي", "القلق"}, toks)
}
