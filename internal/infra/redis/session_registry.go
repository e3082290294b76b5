package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionRegistry stores quiz sessions as JSON snapshots in Redis with a TTL.
// An expired session simply disappears: the taker's progress is lost, which
// matches the in-memory behavior on restart.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{client: client, ttl: ttl}
}

func (r *SessionRegistry) Save(ctx context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.Token), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: save session: %v", domain.ErrStore, err)
	}
	return nil
}

func (r *SessionRegistry) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: token %s", domain.ErrSessionNotFound, token)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", domain.ErrStore, err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *SessionRegistry) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: delete session: %v", domain.ErrStore, err)
	}
	return nil
}

func (r *SessionRegistry) key(token string) string {
	return "exam:session:" + token
}
