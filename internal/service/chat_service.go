package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"groundchat/internal/domain"
	"groundchat/internal/logging"
	"groundchat/internal/session"
)

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) domain.RetrievalResult
}

type Assembler interface {
	Assemble(result domain.RetrievalResult, profile domain.UserProfile, turns []domain.Turn) (domain.GroundingPayload, error)
}

type Completer interface {
	Complete(ctx context.Context, payload domain.GroundingPayload) (string, error)
}

// Answer is the outcome of one turn.
type Answer struct {
	Text      string
	Retrieval domain.RetrievalResult
}

type ChatService struct {
	retriever Retriever
	assembler Assembler
	completer Completer
	topK      int
	logger    *slog.Logger
}

type Option func(*ChatService)

func WithTopK(k int) Option { return func(s *ChatService) { s.topK = k } }

func WithLogger(l *slog.Logger) Option { return func(s *ChatService) { s.logger = l } }

func NewChatService(r Retriever, a Assembler, c Completer, opts ...Option) *ChatService {
	s := &ChatService{retriever: r, assembler: a, completer: c, topK: 4}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// Reply records input as a user turn and answers it. The assistant turn is appended
// only when the completion succeeds; on failure the user turn stays pending so it
// can be resent.
func (s *ChatService) Reply(ctx context.Context, sess *session.Session, input string) (Answer, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Answer{}, domain.ErrEmptyInput
	}
	defer sess.BeginTurn()()
	sess.Append(domain.Turn{Role: domain.RoleUser, Content: input})
	return s.answer(ctx, sess, input)
}

// Resend answers the pending user turn again without appending a duplicate.
func (s *ChatService) Resend(ctx context.Context, sess *session.Session) (Answer, error) {
	defer sess.BeginTurn()()
	pending, ok := sess.Pending()
	if !ok {
		return Answer{}, domain.ErrNoPendingTurn
	}
	return s.answer(ctx, sess, pending.Content)
}

func (s *ChatService) answer(ctx context.Context, sess *session.Session, query string) (Answer, error) {
	start := time.Now()
	log := s.logger.With("session", sess.ID)

	result := s.retriever.Retrieve(ctx, query, s.topK)
	ans := Answer{Retrieval: result}
	payload, err := s.assembler.Assemble(result, sess.Profile, sess.Turns())
	if err != nil {
		return ans, fmt.Errorf("assemble grounding payload: %w", err)
	}
	reply, err := s.completer.Complete(ctx, payload)
	if err != nil {
		log.Warn("turn failed", "strategy", result.Strategy, "error", err)
		return ans, err
	}
	sess.Append(domain.Turn{Role: domain.RoleAssistant, Content: reply})
	ans.Text = reply
	log.Info("turn answered",
		"strategy", result.Strategy,
		"references", len(result.Texts),
		"took", time.Since(start))
	return ans, nil
}
