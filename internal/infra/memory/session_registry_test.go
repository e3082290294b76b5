package memory

import (
	"context"
	"errors"
	"testing"

	"exam-service/internal/domain"
)

func TestSessionRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	registry := NewSessionRegistry()

	session := &domain.Session{
		Token:     "tok-1",
		TakerName: "alice",
		Questions: []domain.Question{{ID: 1, Prompt: "p", Answer: "a"}},
		State:     domain.StateInProgress,
	}
	if err := registry.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := registry.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// The registry hands out copies: mutating a loaded session must not leak
	// back until Save.
	loaded.Score = 5
	again, _ := registry.Get(ctx, "tok-1")
	if again.Score != 0 {
		t.Fatalf("expected isolated copy, got score %d", again.Score)
	}

	if err := registry.Save(ctx, loaded); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, _ = registry.Get(ctx, "tok-1")
	if again.Score != 5 {
		t.Fatalf("expected saved score 5, got %d", again.Score)
	}

	if err := registry.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := registry.Get(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
