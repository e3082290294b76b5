package app_test

import (
	"context"
	"errors"
	"testing"

	"exam-service/internal/app"
	"exam-service/internal/domain"
	"exam-service/internal/infra/memory"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	users := app.NewUserService(memory.NewStore(), 4, 10)

	id, err := users.CreateUser(ctx, "alice", "1234")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := users.CreateUser(ctx, "alice", "5678"); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected duplicate name, got %v", err)
	}

	if err := users.UpdatePIN(ctx, id, "98765"); err != nil {
		t.Fatalf("update pin: %v", err)
	}
	list, err := users.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(list) != 1 || list[0].PIN != "98765" {
		t.Fatalf("unexpected users %+v", list)
	}

	if err := users.DeleteUser(ctx, id); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := users.DeleteUser(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := users.UpdatePIN(ctx, id, "4321"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPINBounds(t *testing.T) {
	ctx := context.Background()
	users := app.NewUserService(memory.NewStore(), 4, 10)

	cases := []struct {
		name string
		pin  string
		ok   bool
	}{
		{"too short", "123", false},
		{"min length", "1234", true},
		{"max length", "0123456789", true},
		{"too long", "01234567890", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.CreateUser(ctx, "user-"+tc.name, tc.pin)
			if tc.ok && err != nil {
				t.Fatalf("expected pin %q accepted, got %v", tc.pin, err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected pin %q rejected, got %v", tc.pin, err)
			}
		})
	}
}

func TestBlankUserName(t *testing.T) {
	users := app.NewUserService(memory.NewStore(), 4, 10)
	if _, err := users.CreateUser(context.Background(), "  ", "1234"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
