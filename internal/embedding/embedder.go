// Package embedding resolves the optional embedding capability.
package embedding

import (
	"fmt"
	"time"

	"groundchat/internal/config"
	"groundchat/internal/domain"
	"groundchat/internal/embedding/openai"
	"groundchat/internal/embedding/tfidf"
)

// Detect resolves the configured embedder once at process start. A non-nil error
// wraps domain.ErrIndexUnavailable and means semantic retrieval stays disabled.
func Detect(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "none":
		return nil, fmt.Errorf("%w: disabled by configuration", domain.ErrIndexUnavailable)
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("%w: openai embedder config missing", domain.ErrIndexUnavailable)
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", domain.ErrIndexUnavailable, cfg.Type)
	}
}
