package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"exam-service/internal/domain"
)

// UserService contains the user registry use cases. PIN length bounds are
// enforced here, not left to convention.
type UserService struct {
	store  UserStore
	minPIN int
	maxPIN int
}

func NewUserService(store UserStore, minPIN, maxPIN int) *UserService {
	return &UserService{store: store, minPIN: minPIN, maxPIN: maxPIN}
}

func (s *UserService) CreateUser(ctx context.Context, name, pin string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: user name is empty", domain.ErrValidation)
	}
	if err := s.checkPIN(pin); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, name, pin)
}

func (s *UserService) UpdatePIN(ctx context.Context, userID int64, pin string) error {
	if err := s.checkPIN(pin); err != nil {
		return err
	}
	return s.store.UpdatePIN(ctx, userID, pin)
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	return s.store.DeleteUser(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) checkPIN(pin string) error {
	n := utf8.RuneCountInString(pin)
	if n < s.minPIN || n > s.maxPIN {
		return fmt.Errorf("%w: pin must be %d-%d characters", domain.ErrValidation, s.minPIN, s.maxPIN)
	}
	return nil
}
