package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"exam-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store implements the app store interfaces on Postgres via bun. Every
// mutating operation is one unit of work: all rows commit or the transaction
// rolls back.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSet(ctx context.Context, name string, createdAt time.Time, drafts []domain.QuestionDraft) (int64, error) {
	row := setRow{Name: name, DateCreated: createdAt}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		if len(drafts) == 0 {
			return nil
		}
		questions := make([]questionRow, len(drafts))
		for i, d := range drafts {
			questions[i] = questionRow{SetID: row.ID, Prompt: d.Prompt, Answer: d.Answer}
		}
		_, err := tx.NewInsert().Model(&questions).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, mapErr(err, fmt.Sprintf("set %q", name))
	}
	return row.ID, nil
}

func (s *Store) GetSet(ctx context.Context, id int64) (domain.Set, error) {
	var row setRow
	err := s.db.NewSelect().Model(&row).Where("set_id = ?", id).Scan(ctx)
	if err != nil {
		return domain.Set{}, mapErr(err, fmt.Sprintf("set %d", id))
	}
	return domain.Set{ID: row.ID, Name: row.Name, DateCreated: row.DateCreated}, nil
}

func (s *Store) ListSets(ctx context.Context) ([]domain.Set, error) {
	var rows []setRow
	if err := s.db.NewSelect().Model(&rows).Order("set_id ASC").Scan(ctx); err != nil {
		return nil, mapErr(err, "list sets")
	}
	sets := make([]domain.Set, len(rows))
	for i, r := range rows {
		sets[i] = domain.Set{ID: r.ID, Name: r.Name, DateCreated: r.DateCreated}
	}
	return sets, nil
}

func (s *Store) DeleteSet(ctx context.Context, id int64) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("set_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*setRow)(nil)).Where("set_id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		return requireAffected(res, fmt.Sprintf("set %d", id))
	})
	if err != nil {
		return mapErr(err, fmt.Sprintf("set %d", id))
	}
	return nil
}

func (s *Store) AddQuestions(ctx context.Context, setID int64, drafts []domain.QuestionDraft) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*setRow)(nil)).Where("set_id = ?", setID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: set %d", domain.ErrNotFound, setID)
		}
		questions := make([]questionRow, len(drafts))
		for i, d := range drafts {
			questions[i] = questionRow{SetID: setID, Prompt: d.Prompt, Answer: d.Answer}
		}
		_, err = tx.NewInsert().Model(&questions).Exec(ctx)
		return err
	})
	if err != nil {
		return mapErr(err, fmt.Sprintf("set %d", setID))
	}
	return nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id int64, prompt, answer string) error {
	res, err := s.db.NewUpdate().Model((*questionRow)(nil)).
		Set("question_text = ?", prompt).
		Set("answer = ?", answer).
		Where("question_id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapErr(err, fmt.Sprintf("question %d", id))
	}
	return requireAffected(res, fmt.Sprintf("question %d", id))
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("question_id = ?", id).Exec(ctx)
	if err != nil {
		return mapErr(err, fmt.Sprintf("question %d", id))
	}
	return requireAffected(res, fmt.Sprintf("question %d", id))
}

func (s *Store) ListQuestions(ctx context.Context, setID int64) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).Where("set_id = ?", setID).Order("question_id ASC").Scan(ctx)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("questions of set %d", setID))
	}
	questions := make([]domain.Question, len(rows))
	for i, r := range rows {
		questions[i] = domain.Question{ID: r.ID, SetID: r.SetID, Prompt: r.Prompt, Answer: r.Answer}
	}
	return questions, nil
}

func (s *Store) CreateUser(ctx context.Context, name, pin string) (int64, error) {
	row := userRow{Name: name, PIN: pin}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return 0, mapErr(err, fmt.Sprintf("user %q", name))
	}
	return row.ID, nil
}

func (s *Store) UpdatePIN(ctx context.Context, id int64, pin string) error {
	res, err := s.db.NewUpdate().Model((*userRow)(nil)).
		Set("pin = ?", pin).
		Where("user_id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapErr(err, fmt.Sprintf("user %d", id))
	}
	return requireAffected(res, fmt.Sprintf("user %d", id))
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*userRow)(nil)).Where("user_id = ?", id).Exec(ctx)
	if err != nil {
		return mapErr(err, fmt.Sprintf("user %d", id))
	}
	return requireAffected(res, fmt.Sprintf("user %d", id))
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("user_id ASC").Scan(ctx); err != nil {
		return nil, mapErr(err, "list users")
	}
	users := make([]domain.User, len(rows))
	for i, r := range rows {
		users[i] = domain.User{ID: r.ID, Name: r.Name, PIN: r.PIN}
	}
	return users, nil
}

func (s *Store) InsertResult(ctx context.Context, r domain.Result) (int64, error) {
	row := resultRow{
		UserName:  r.TakerName,
		SetID:     r.SetID,
		Score:     r.Score,
		Total:     r.Total,
		DateTaken: r.DateTaken,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return 0, mapErr(err, "insert result")
	}
	return row.ID, nil
}

func (s *Store) ResultsForTaker(ctx context.Context, taker string) ([]domain.Result, error) {
	return s.queryResults(ctx, "r.user_name = ?", taker)
}

func (s *Store) AllResults(ctx context.Context) ([]domain.Result, error) {
	return s.queryResults(ctx, "TRUE")
}

func (s *Store) queryResults(ctx context.Context, where string, args ...interface{}) ([]domain.Result, error) {
	var rows []resultJoinRow
	err := s.db.NewSelect().
		TableExpr("results AS r").
		ColumnExpr("r.result_id, r.user_name, r.set_id, COALESCE(s.set_name, '') AS set_name").
		ColumnExpr("r.score, r.total, r.date_taken").
		Join("LEFT JOIN sets AS s ON s.set_id = r.set_id").
		Where(where, args...).
		OrderExpr("r.date_taken DESC, r.result_id DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, mapErr(err, "query results")
	}
	results := make([]domain.Result, len(rows))
	for i, r := range rows {
		results[i] = domain.Result{
			ID:        r.ResultID,
			TakerName: r.UserName,
			SetID:     r.SetID,
			SetName:   r.SetName,
			Score:     r.Score,
			Total:     r.Total,
			DateTaken: r.DateTaken,
		}
	}
	return results, nil
}

// AverageForSet averages each result's own score/total, so the percentage
// stays honest when the set's question count changed over time.
func (s *Store) AverageForSet(ctx context.Context, setID int64) (domain.Average, error) {
	var avg sql.NullFloat64
	err := s.db.NewSelect().
		TableExpr("results").
		ColumnExpr("AVG(score::numeric / NULLIF(total, 0)) * 100").
		Where("set_id = ?", setID).
		Scan(ctx, &avg)
	if err != nil {
		return domain.Average{}, mapErr(err, fmt.Sprintf("average of set %d", setID))
	}
	if !avg.Valid {
		return domain.Average{}, nil
	}
	return domain.Average{Percent: math.Round(avg.Float64*100) / 100, HasResults: true}, nil
}

// mapErr translates driver errors into the domain taxonomy.
func mapErr(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicateName) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, subject)
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, subject)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, subject, err)
}

func requireAffected(res sql.Result, subject string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStore, subject, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, subject)
	}
	return nil
}
