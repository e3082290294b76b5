package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionRegistryRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "tok-1",
		TakerName: "alice",
		SetID:     1,
		SetName:   "Geo",
		Questions: []domain.Question{{ID: 1, SetID: 1, Prompt: "Capital of France?", Answer: "Paris"}},
		State:     domain.StateInProgress,
		StartedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := registry.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("exam:session:tok-1") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, err := registry.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.TakerName != "alice" || len(loaded.Questions) != 1 || loaded.Questions[0].Answer != "Paris" {
		t.Fatalf("unexpected session %+v", loaded)
	}

	if err := registry.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := registry.Get(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)
	ctx := context.Background()

	if err := registry.Save(ctx, &domain.Session{Token: "tok-2", State: domain.StateInProgress}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := registry.Get(ctx, "tok-2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
