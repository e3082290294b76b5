package app

import (
	"context"
	"time"

	"exam-service/internal/domain"
)

// CatalogStore abstracts persistence for sets and their questions. Mutating
// operations are each a single unit of work: all rows commit or none.
type CatalogStore interface {
	CreateSet(ctx context.Context, name string, createdAt time.Time, drafts []domain.QuestionDraft) (int64, error)
	GetSet(ctx context.Context, id int64) (domain.Set, error)
	ListSets(ctx context.Context) ([]domain.Set, error)
	DeleteSet(ctx context.Context, id int64) error
	AddQuestions(ctx context.Context, setID int64, drafts []domain.QuestionDraft) error
	UpdateQuestion(ctx context.Context, id int64, prompt, answer string) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListQuestions(ctx context.Context, setID int64) ([]domain.Question, error)
}

// UserStore abstracts persistence for registered users.
type UserStore interface {
	CreateUser(ctx context.Context, name, pin string) (int64, error)
	UpdatePIN(ctx context.Context, id int64, pin string) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ResultStore abstracts the append-only results ledger.
type ResultStore interface {
	InsertResult(ctx context.Context, r domain.Result) (int64, error)
	ResultsForTaker(ctx context.Context, taker string) ([]domain.Result, error)
	AllResults(ctx context.Context) ([]domain.Result, error)
	AverageForSet(ctx context.Context, setID int64) (domain.Average, error)
}

// SessionRegistry holds live quiz sessions (in-memory, Redis, etc).
type SessionRegistry interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// Dashboard answers the admin overview aggregates through a read-only path.
type Dashboard interface {
	Overview(ctx context.Context) (domain.Overview, error)
}
