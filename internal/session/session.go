// Package session holds one user's profile and conversation history.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"groundchat/internal/domain"
)

// Session owns an append-only turn history. Stored turns are never trimmed; the
// assembler projects the window it sends at read time.
type Session struct {
	ID        string
	Profile   domain.UserProfile
	StartedAt time.Time

	turn  sync.Mutex
	mu    sync.RWMutex
	turns []domain.Turn
}

func New(profile domain.UserProfile) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		StartedAt: time.Now(),
	}
}

// BeginTurn blocks until no other turn of this session is in flight. The returned
// func ends the turn.
func (s *Session) BeginTurn() (end func()) {
	s.turn.Lock()
	return s.turn.Unlock
}

func (s *Session) Append(t domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
}

// Turns returns a copy of the full history.
func (s *Session) Turns() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Pending returns the last turn when it is a user message still awaiting a reply.
func (s *Session) Pending() (domain.Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return domain.Turn{}, false
	}
	last := s.turns[len(s.turns)-1]
	return last, last.Role == domain.RoleUser
}
