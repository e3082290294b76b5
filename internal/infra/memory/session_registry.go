package memory

import (
	"context"
	"fmt"
	"sync"

	"exam-service/internal/domain"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
// Save stores a copy and Get returns a copy, so callers see the same
// load-mutate-save semantics as the Redis registry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]domain.Session)}
}

func (r *SessionRegistry) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = copySession(s)
	return nil
}

func (r *SessionRegistry) Get(_ context.Context, token string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, fmt.Errorf("%w: token %s", domain.ErrSessionNotFound, token)
	}
	out := copySession(&s)
	return &out, nil
}

func (r *SessionRegistry) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func copySession(s *domain.Session) domain.Session {
	out := *s
	out.Questions = append([]domain.Question(nil), s.Questions...)
	return out
}
