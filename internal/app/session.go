package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"exam-service/internal/domain"
	"github.com/google/uuid"
)

// SessionService drives the linear quiz walk: start, answer, finish. Session
// state lives in the registry between calls; the service itself is stateless
// apart from the mutex serializing load-mutate-save cycles.
type SessionService struct {
	catalog  CatalogStore
	results  *ResultsService
	registry SessionRegistry
	clock    func() time.Time

	mu sync.Mutex
}

func NewSessionService(catalog CatalogStore, results *ResultsService, registry SessionRegistry) *SessionService {
	return &SessionService{catalog: catalog, results: results, registry: registry, clock: time.Now}
}

// NewSessionServiceWithClock is test-only for deterministic timestamps.
func NewSessionServiceWithClock(catalog CatalogStore, results *ResultsService, registry SessionRegistry, now func() time.Time) *SessionService {
	return &SessionService{catalog: catalog, results: results, registry: registry, clock: now}
}

// Start snapshots the set's questions and opens an in-progress session.
// The snapshot is immutable: later edits to the set do not affect this walk.
func (s *SessionService) Start(ctx context.Context, setID int64, takerName string) (*domain.Session, error) {
	takerName = strings.TrimSpace(takerName)
	if takerName == "" {
		return nil, fmt.Errorf("%w: taker name is empty", domain.ErrValidation)
	}

	set, err := s.catalog.GetSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	questions, err := s.catalog.ListQuestions(ctx, setID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrEmptyQuiz, set.Name)
	}

	session := &domain.Session{
		Token:     uuid.NewString(),
		TakerName: takerName,
		SetID:     set.ID,
		SetName:   set.Name,
		Questions: questions,
		Index:     0,
		Score:     0,
		State:     domain.StateInProgress,
		StartedAt: s.clock(),
	}
	if err := s.registry.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current returns the prompt at the session's cursor. done is true once every
// question has been answered and only finish remains.
func (s *SessionService) Current(ctx context.Context, token string) (prompt string, index int, done bool, err error) {
	session, err := s.registry.Get(ctx, token)
	if err != nil {
		return "", 0, false, err
	}
	if session.Index >= len(session.Questions) {
		return "", session.Index, true, nil
	}
	return session.Questions[session.Index].Prompt, session.Index, false, nil
}

// Submit grades one answer. Whitespace is trimmed from both sides and the
// comparison is case-insensitive; the cursor advances whether or not the
// answer was correct.
func (s *SessionService) Submit(ctx context.Context, token, raw string) (domain.AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.registry.Get(ctx, token)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	if session.State != domain.StateInProgress {
		return domain.AnswerOutcome{}, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.State)
	}
	if session.Index >= len(session.Questions) {
		return domain.AnswerOutcome{}, fmt.Errorf("%w: all questions answered", domain.ErrInvalidState)
	}

	correct := domain.Grade(raw, session.Questions[session.Index].Answer)
	if correct {
		session.Score++
	}
	session.Index++

	if err := s.registry.Save(ctx, session); err != nil {
		return domain.AnswerOutcome{}, err
	}
	return domain.AnswerOutcome{
		Correct:   correct,
		Score:     session.Score,
		Index:     session.Index,
		Remaining: len(session.Questions) - session.Index,
	}, nil
}

// Finish closes the session and writes its result row exactly once. A second
// finish fails with ErrAlreadyFinished and leaves the ledger untouched.
func (s *SessionService) Finish(ctx context.Context, token string) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.registry.Get(ctx, token)
	if err != nil {
		return domain.Summary{}, err
	}
	if session.State == domain.StateFinished || session.Recorded {
		return domain.Summary{}, domain.ErrAlreadyFinished
	}
	if session.Index != len(session.Questions) {
		return domain.Summary{}, fmt.Errorf("%w: %d of %d questions answered",
			domain.ErrInvalidState, session.Index, len(session.Questions))
	}

	total := len(session.Questions)
	if _, err := s.results.Record(ctx, session.TakerName, session.SetID, session.Score, total, s.clock()); err != nil {
		return domain.Summary{}, err
	}
	session.Recorded = true
	session.State = domain.StateFinished
	if err := s.registry.Save(ctx, session); err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		Token:     session.Token,
		TakerName: session.TakerName,
		SetName:   session.SetName,
		Score:     session.Score,
		Total:     total,
	}, nil
}
