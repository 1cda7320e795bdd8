// Package gateway sends grounding payloads to an OpenAI-compatible chat completion
// service such as Groq. It performs exactly one request per call and never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"groundchat/internal/domain"
	"groundchat/internal/logging"
	"groundchat/internal/metrics"
)

// DefaultFallbackReply replaces blank completion content.
const DefaultFallbackReply = "I'm sorry, I'm unable to answer right now. Please try again in a moment."

type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerMinute int
	FallbackReply     string
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
}

type Gateway struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	fallback    string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New creates a gateway. A missing API key is not an error here; it surfaces as a
// GatewayFailure when a turn is completed.
func New(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
	}
	fallback := cfg.FallbackReply
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallbackReply
	}
	return &Gateway{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		fallback:    fallback,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logging.OrDefault(cfg.Logger),
		metrics:     cfg.Metrics,
	}
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the system instruction followed by the turn window and returns the
// reply. Every failure is an *Error matching domain.ErrGatewayFailure.
func (g *Gateway) Complete(ctx context.Context, payload domain.GroundingPayload) (string, error) {
	reply, err := g.complete(ctx, payload)
	if err != nil {
		var gerr *Error
		if !errors.As(err, &gerr) {
			gerr = newError(0, err)
		}
		g.logger.Warn("completion failed", "kind", gerr.Kind, "status", gerr.Status, "error", gerr.Err)
		g.metrics.ObserveGateway(string(gerr.Kind))
		return "", gerr
	}
	g.metrics.ObserveGateway("ok")
	return reply, nil
}

func (g *Gateway) complete(ctx context.Context, payload domain.GroundingPayload) (string, error) {
	if g.apiKey == "" {
		return "", newError(0, domain.ErrMissingCredential)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    payload.Messages(),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 300 {
		return "", newError(resp.StatusCode, fmt.Errorf("service error: %s", strings.TrimSpace(string(data))))
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", newError(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", newError(resp.StatusCode, errors.New("response has no choices"))
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		g.logger.Warn("completion returned empty content, using fallback reply")
		return g.fallback, nil
	}
	return content, nil
}
