package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundchat/internal/chunker"
	"groundchat/internal/domain"
	"groundchat/internal/embedding/tfidf"
	"groundchat/internal/vectorstore/memory"
)

type staticSource struct {
	docs  []domain.Document
	calls atomic.Int64
}

func (s *staticSource) Extract(context.Context) domain.Corpus {
	s.calls.Add(1)
	return domain.NewCorpus("docs", s.docs, nil)
}

type countingEmbedder struct {
	*tfidf.Embedder
	prepares atomic.Int64
}

func (c *countingEmbedder) Prepare(ctx context.Context, corpus []string) error {
	c.prepares.Add(1)
	return c.Embedder.Prepare(ctx, corpus)
}

type brokenEmbedder struct{ countingEmbedder }

func (b *brokenEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("model offline")
}

func newChunker(t *testing.T) domain.Chunker {
	t.Helper()
	c, err := chunker.NewRecursiveChunker(200, 20)
	require.NoError(t, err)
	return c
}

func docs(texts ...string) []domain.Document {
	out := make([]domain.Document, len(texts))
	for i, tx := range texts {
		out[i] = domain.Document{Path: "doc", Pages: 1, Text: tx}
	}
	return out
}

func TestConcurrentFirstCallsBuildOnce(t *testing.T) {
	src := &staticSource{docs: docs("Anxiety is treated with CBT.\n", "Sleep hygiene improves insomnia.\n")}
	emb := &countingEmbedder{Embedder: tfidf.NewEmbedder()}
	ix := New(src, newChunker(t), emb, memory.NewStorage())

	var wg sync.WaitGroup
	results := make([]*Knowledge, 16)
	for n := range results {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[n] = ix.Knowledge(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ix.Builds())
	assert.Equal(t, int64(1), src.calls.Load())
	assert.Equal(t, int64(1), emb.prepares.Load())
	for _, kb := range results {
		assert.Same(t, results[0], kb)
	}
	assert.True(t, results[0].IndexReady())
	assert.NoError(t, results[0].BuildErr)
}

func TestSearchReturnsNearestChunk(t *testing.T) {
	src := &staticSource{docs: docs("Anxiety is treated with CBT.\n\n", "Sleep hygiene improves insomnia.\n")}
	c, err := chunker.NewRecursiveChunker(40, 0)
	require.NoError(t, err)
	ix := New(src, c, tfidf.NewEmbedder(), memory.NewStorage())

	kb := ix.Knowledge(context.Background())
	require.True(t, kb.IndexReady())
	require.Len(t, kb.Chunks, 2)

	res, err := kb.Search(context.Background(), "How is anxiety treated?", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Anxiety is treated with CBT.", res[0].Chunk.Text)
}

func TestBuildFailureDisablesIndex(t *testing.T) {
	src := &staticSource{docs: docs("Anxiety is treated with CBT.\n")}
	emb := &brokenEmbedder{countingEmbedder{Embedder: tfidf.NewEmbedder()}}
	ix := New(src, newChunker(t), emb, memory.NewStorage())

	kb := ix.Knowledge(context.Background())
	assert.False(t, kb.IndexReady())
	assert.ErrorIs(t, kb.BuildErr, domain.ErrIndexUnavailable)
	assert.Equal(t, "Anxiety is treated with CBT.\n", kb.CorpusText())

	_, err := kb.Search(context.Background(), "anxiety", 1)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	ix.Knowledge(context.Background())
	assert.Equal(t, 1, ix.Builds())
}

func TestMissingCapabilityKeepsCorpus(t *testing.T) {
	capErr := errors.New("embedding disabled")
	src := &staticSource{docs: docs("Anxiety is treated with CBT.\n")}
	ix := New(src, newChunker(t), nil, nil, WithCapabilityError(capErr))

	kb := ix.Knowledge(context.Background())
	assert.False(t, kb.IndexReady())
	assert.ErrorIs(t, kb.BuildErr, capErr)
	assert.False(t, kb.Empty())
	assert.Len(t, kb.Chunks, 1)
}

func TestEmptyCorpusSkipsIndex(t *testing.T) {
	emb := &countingEmbedder{Embedder: tfidf.NewEmbedder()}
	ix := New(&staticSource{}, newChunker(t), emb, memory.NewStorage())

	kb := ix.Knowledge(context.Background())
	assert.True(t, kb.Empty())
	assert.Empty(t, kb.Chunks)
	assert.False(t, kb.IndexReady())
	assert.Equal(t, domain.NoKnowledgeText, kb.CorpusText())
	assert.Zero(t, emb.prepares.Load())
}

func TestCancelledContextDoesNotPoisonBuild(t *testing.T) {
	src := &staticSource{docs: docs("Anxiety is treated with CBT.\n")}
	ix := New(src, newChunker(t), tfidf.NewEmbedder(), memory.NewStorage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kb := ix.Knowledge(ctx)
	assert.True(t, kb.IndexReady())
}
