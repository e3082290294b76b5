package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exam-service/internal/domain"
)

// CatalogService contains the set/question management use cases.
type CatalogService struct {
	store CatalogStore
	clock func() time.Time
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store, clock: time.Now}
}

// NewCatalogServiceWithClock is test-only for deterministic timestamps.
func NewCatalogServiceWithClock(store CatalogStore, now func() time.Time) *CatalogService {
	return &CatalogService{store: store, clock: now}
}

// CreateSet persists a new set and its initial questions as one unit of work.
// Questions may be empty; a set with zero questions is valid but cannot be
// taken until questions are added.
func (s *CatalogService) CreateSet(ctx context.Context, name string, drafts []domain.QuestionDraft) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: set name is empty", domain.ErrValidation)
	}
	if err := validateDrafts(drafts); err != nil {
		return 0, err
	}
	return s.store.CreateSet(ctx, name, s.clock(), drafts)
}

// AddQuestions appends questions to an existing set.
func (s *CatalogService) AddQuestions(ctx context.Context, setID int64, drafts []domain.QuestionDraft) error {
	if len(drafts) == 0 {
		return fmt.Errorf("%w: no questions given", domain.ErrValidation)
	}
	if err := validateDrafts(drafts); err != nil {
		return err
	}
	return s.store.AddQuestions(ctx, setID, drafts)
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, questionID int64, prompt, answer string) error {
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: prompt and answer must be non-empty", domain.ErrValidation)
	}
	return s.store.UpdateQuestion(ctx, questionID, prompt, answer)
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, questionID int64) error {
	return s.store.DeleteQuestion(ctx, questionID)
}

// DeleteSet removes a set and all its questions transactionally.
func (s *CatalogService) DeleteSet(ctx context.Context, setID int64) error {
	return s.store.DeleteSet(ctx, setID)
}

// ListSets returns all sets in insertion order, from a fresh query.
func (s *CatalogService) ListSets(ctx context.Context) ([]domain.Set, error) {
	return s.store.ListSets(ctx)
}

// ListQuestions returns a set's questions in insertion order.
func (s *CatalogService) ListQuestions(ctx context.Context, setID int64) ([]domain.Question, error) {
	if _, err := s.store.GetSet(ctx, setID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, setID)
}

func validateDrafts(drafts []domain.QuestionDraft) error {
	for i, d := range drafts {
		if strings.TrimSpace(d.Prompt) == "" || strings.TrimSpace(d.Answer) == "" {
			return fmt.Errorf("%w: question %d has an empty prompt or answer", domain.ErrValidation, i+1)
		}
	}
	return nil
}
