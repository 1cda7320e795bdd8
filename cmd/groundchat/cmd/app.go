package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"groundchat/internal/assembler"
	"groundchat/internal/chunker"
	"groundchat/internal/config"
	"groundchat/internal/domain"
	"groundchat/internal/embedding"
	"groundchat/internal/extractor"
	"groundchat/internal/gateway"
	"groundchat/internal/indexer"
	"groundchat/internal/metrics"
	"groundchat/internal/retriever"
	"groundchat/internal/service"
	"groundchat/internal/vectorstore"
)

// app is the wired pipeline shared by every subcommand.
type app struct {
	indexer  *indexer.Indexer
	service  *service.ChatService
	embedder string
	registry *prometheus.Registry
}

func newApp(cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ext := extractor.New(cfg.Corpus.Dir, cfg.Corpus.Extensions,
		extractor.WithLogger(logger), extractor.WithMetrics(m))
	ch, err := chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	// The capability is resolved once here; retrieval never re-checks it.
	emb, capErr := embedding.Detect(cfg.Embedder)
	var store domain.VectorStore
	if capErr == nil {
		store, err = vectorstore.New(cfg.VectorStore)
		if err != nil {
			emb, capErr = nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
	}
	embedderName := "none"
	if emb != nil {
		embedderName = emb.Name()
	} else {
		logger.Warn("semantic retrieval unavailable", "reason", capErr)
	}

	ix := indexer.New(ext, ch, emb, store,
		indexer.WithLogger(logger),
		indexer.WithMetrics(m),
		indexer.WithConcurrency(cfg.Embedder.Concurrency),
		indexer.WithCapabilityError(capErr))
	rt := retriever.New(ix, cfg.Retrieval.FallbackChars,
		retriever.WithTopK(cfg.Retrieval.TopK),
		retriever.WithLogger(logger),
		retriever.WithMetrics(m))

	asmOpts := []assembler.Option{assembler.WithWindow(cfg.Retrieval.HistoryWindow)}
	if cfg.Persona.TemplateFile != "" {
		data, err := os.ReadFile(cfg.Persona.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("read persona template: %w", err)
		}
		asmOpts = append(asmOpts, assembler.WithTemplate(string(data)))
	}
	asm, err := assembler.New(asmOpts...)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(gateway.Config{
		BaseURL:           cfg.Gateway.BaseURL,
		APIKey:            os.Getenv(cfg.Gateway.APIKeyEnv),
		Model:             cfg.Gateway.Model,
		Temperature:       cfg.Gateway.Temperature,
		Timeout:           time.Duration(cfg.Gateway.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.Gateway.RequestsPerMinute,
		FallbackReply:     cfg.Gateway.FallbackReply,
		Logger:            logger,
		Metrics:           m,
	})
	svc := service.NewChatService(rt, asm, gw,
		service.WithTopK(cfg.Retrieval.TopK),
		service.WithLogger(logger))

	return &app{indexer: ix, service: svc, embedder: embedderName, registry: reg}, nil
}

// serveMetrics exposes /metrics on addr until ctx is done. An empty addr is a no-op.
func (a *app) serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "addr", addr, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logger.Info("serving metrics", "addr", addr)
}
