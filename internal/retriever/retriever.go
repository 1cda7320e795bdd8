// Package retriever selects reference text for a query through an ordered chain of
// strategies: semantic search, corpus truncation, then the no-references sentinel.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"groundchat/internal/domain"
	"groundchat/internal/indexer"
	"groundchat/internal/logging"
	"groundchat/internal/metrics"
)

// KnowledgeSource returns the memoized knowledge base.
type KnowledgeSource interface {
	Knowledge(ctx context.Context) *indexer.Knowledge
}

// Strategy is one tier of the retrieval chain.
type Strategy interface {
	Name() domain.Strategy
	// Applicable reports whether the strategy can run for this knowledge base and query.
	Applicable(kb *indexer.Knowledge, query string) bool
	Retrieve(ctx context.Context, kb *indexer.Knowledge, query string, k int) ([]string, error)
}

type Retriever struct {
	source  KnowledgeSource
	chain   []Strategy
	topK    int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Retriever)

func WithLogger(l *slog.Logger) Option { return func(r *Retriever) { r.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(r *Retriever) { r.metrics = m } }

// WithTopK sets k used when Retrieve is called with k <= 0.
func WithTopK(k int) Option { return func(r *Retriever) { r.topK = k } }

// WithChain replaces the default semantic, truncation chain.
func WithChain(chain ...Strategy) Option { return func(r *Retriever) { r.chain = chain } }

// New creates a retriever with the default chain and the given fallback budget in characters.
func New(source KnowledgeSource, fallbackChars int, opts ...Option) *Retriever {
	r := &Retriever{
		source: source,
		chain:  []Strategy{Semantic{}, Truncation{Limit: fallbackChars}},
		topK:   4,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger)
	return r
}

// Retrieve never fails: every error degrades to the next tier and the result records
// which tier answered. Err holds the last failure of a stronger tier, if any.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) domain.RetrievalResult {
	if k <= 0 {
		k = r.topK
	}
	kb := r.source.Knowledge(ctx)
	if kb == nil || kb.Empty() {
		return r.sentinel(nil)
	}
	var lastErr error
	for _, s := range r.chain {
		if !s.Applicable(kb, query) {
			continue
		}
		texts, err := run(ctx, s, kb, query, k)
		if err == nil && len(texts) > 0 {
			r.metrics.ObserveRetrieval(string(s.Name()))
			return domain.RetrievalResult{Texts: texts, Strategy: s.Name(), Err: lastErr}
		}
		if err == nil {
			err = fmt.Errorf("%w: %s strategy returned nothing", domain.ErrRetrieval, s.Name())
		}
		r.logger.Warn("retrieval strategy failed, falling back", "strategy", s.Name(), "error", err)
		lastErr = err
	}
	return r.sentinel(lastErr)
}

func (r *Retriever) sentinel(err error) domain.RetrievalResult {
	r.metrics.ObserveRetrieval(string(domain.StrategySentinel))
	return domain.RetrievalResult{
		Texts:    []string{domain.NoReferencesText},
		Strategy: domain.StrategySentinel,
		Err:      err,
	}
}

func run(ctx context.Context, s Strategy, kb *indexer.Knowledge, query string, k int) (texts []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s strategy panicked: %v", domain.ErrRetrieval, s.Name(), rec)
		}
	}()
	return s.Retrieve(ctx, kb, query, k)
}

// Semantic returns the k nearest chunks, most similar first, with no score threshold.
type Semantic struct{}

func (Semantic) Name() domain.Strategy { return domain.StrategySemantic }

func (Semantic) Applicable(kb *indexer.Knowledge, query string) bool {
	return kb.IndexReady() && strings.TrimSpace(query) != ""
}

func (Semantic) Retrieve(ctx context.Context, kb *indexer.Knowledge, query string, k int) ([]string, error) {
	res, err := kb.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(res))
	for _, r := range res {
		texts = append(texts, r.Chunk.Text)
	}
	return texts, nil
}

// Truncation returns the first Limit characters of the corpus text, ignoring
// chunk boundaries and the query.
type Truncation struct {
	Limit int
}

func (Truncation) Name() domain.Strategy { return domain.StrategyTruncation }

func (Truncation) Applicable(kb *indexer.Knowledge, _ string) bool { return !kb.Empty() }

func (t Truncation) Retrieve(_ context.Context, kb *indexer.Knowledge, _ string, _ int) ([]string, error) {
	return []string{Prefix(kb.Corpus.RawText(), t.Limit)}, nil
}

// Prefix returns the first n runes of s. A non-positive n leaves s unchanged.
func Prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
