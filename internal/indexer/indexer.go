// Package indexer builds the process-wide knowledge base: corpus text, chunks and
// the optional semantic index. The build runs at most once per process.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"groundchat/internal/domain"
	"groundchat/internal/logging"
	"groundchat/internal/metrics"
)

// Source yields the corpus snapshot.
type Source interface {
	Extract(ctx context.Context) domain.Corpus
}

type Indexer struct {
	source      Source
	chunker     domain.Chunker
	embedder    domain.Embedder
	store       domain.VectorStore
	capErr      error
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics

	once      sync.Once
	knowledge *Knowledge
	builds    atomic.Int64
}

type Option func(*Indexer)

func WithLogger(l *slog.Logger) Option { return func(i *Indexer) { i.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(i *Indexer) { i.metrics = m } }

// WithConcurrency bounds how many chunks are embedded at once.
func WithConcurrency(n int) Option { return func(i *Indexer) { i.concurrency = n } }

// WithCapabilityError records why the embedder is absent, for logging.
func WithCapabilityError(err error) Option { return func(i *Indexer) { i.capErr = err } }

// New creates an indexer. A nil embedder or store disables the semantic index.
func New(source Source, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, opts ...Option) *Indexer {
	i := &Indexer{
		source:      source,
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.OrDefault(i.logger)
	if i.concurrency <= 0 {
		i.concurrency = 1
	}
	return i
}

// Knowledge returns the memoized knowledge base, building it on first use.
// Concurrent first callers wait for the same build and share its outcome.
// The build is detached from ctx cancellation so an abandoned turn cannot poison it.
func (i *Indexer) Knowledge(ctx context.Context) *Knowledge {
	i.once.Do(func() {
		i.knowledge = i.build(context.WithoutCancel(ctx))
	})
	return i.knowledge
}

// Builds reports how many builds have run. It never exceeds one.
func (i *Indexer) Builds() int { return int(i.builds.Load()) }

func (i *Indexer) build(ctx context.Context) *Knowledge {
	i.builds.Add(1)
	start := time.Now()

	corpus := i.source.Extract(ctx)
	var chunks []domain.Chunk
	if !corpus.Empty() {
		chunks = i.chunker.Chunk(corpus.RawText())
	}
	kb := &Knowledge{Corpus: corpus, Chunks: chunks}

	switch {
	case corpus.Empty():
		i.logger.Warn("knowledge base is empty", "dir", corpus.Dir, "skipped", len(corpus.Skipped))
		i.metrics.ObserveIndexBuild("empty")
		return kb
	case i.embedder == nil || i.store == nil:
		kb.BuildErr = i.capErr
		if kb.BuildErr == nil {
			kb.BuildErr = fmt.Errorf("%w: no embedder configured", domain.ErrIndexUnavailable)
		}
		i.logger.Warn("semantic retrieval disabled", "reason", kb.BuildErr)
		i.metrics.ObserveIndexBuild("disabled")
		return kb
	}

	if err := i.index(ctx, chunks); err != nil {
		kb.BuildErr = fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		i.logger.Warn("index build failed, using truncation retrieval", "error", err)
		i.metrics.ObserveIndexBuild("failed")
		return kb
	}
	kb.embedder = i.embedder
	kb.store = i.store
	kb.ready = true
	i.logger.Info("knowledge base ready",
		"documents", len(corpus.Documents),
		"chunks", len(chunks),
		"embedder", i.embedder.Name(),
		"took", time.Since(start))
	i.metrics.ObserveIndexBuild("ok")
	return kb
}

func (i *Indexer) index(ctx context.Context, chunks []domain.Chunk) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index build panicked: %v", r)
		}
	}()
	texts := make([]string, len(chunks))
	for n, ch := range chunks {
		texts[n] = ch.Text
	}
	if err := i.embedder.Prepare(ctx, texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	if err := i.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := i.store.Init(ctx, i.embedder.Dimension()); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for n := range chunks {
		n := n
		g.Go(func() error {
			vec, err := i.embedder.Embed(gctx, chunks[n].Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunks[n].Index, err)
			}
			vectors[n] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := i.store.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Knowledge is the immutable outcome of a build.
type Knowledge struct {
	Corpus   domain.Corpus
	Chunks   []domain.Chunk
	BuildErr error

	embedder domain.Embedder
	store    domain.VectorStore
	ready    bool
}

// CorpusText returns the concatenated corpus text or the no-knowledge sentinel.
func (k *Knowledge) CorpusText() string { return k.Corpus.Text() }

func (k *Knowledge) Empty() bool { return k.Corpus.Empty() }

func (k *Knowledge) Documents() []domain.Document { return k.Corpus.Documents }

// IndexReady reports whether semantic search is available for the process lifetime.
func (k *Knowledge) IndexReady() bool { return k.ready }

// Search embeds query and returns its k nearest chunks, most similar first.
func (k *Knowledge) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if !k.ready {
		if k.BuildErr != nil {
			return nil, k.BuildErr
		}
		return nil, domain.ErrIndexUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrEmptyInput)
	}
	vec, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}
	res, err := k.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return res, nil
}
