package app

import (
	"context"
	"fmt"
	"time"

	"exam-service/internal/domain"
)

// ResultsService is the append-only ledger of finished sessions plus its
// aggregate read paths.
type ResultsService struct {
	store ResultStore
	dash  Dashboard
}

func NewResultsService(store ResultStore, dash Dashboard) *ResultsService {
	return &ResultsService{store: store, dash: dash}
}

// Record appends one result row. Results are immutable once written.
func (s *ResultsService) Record(ctx context.Context, taker string, setID int64, score, total int, takenAt time.Time) (int64, error) {
	if score < 0 || score > total {
		return 0, fmt.Errorf("%w: score %d outside 0..%d", domain.ErrValidation, score, total)
	}
	return s.store.InsertResult(ctx, domain.Result{
		TakerName: taker,
		SetID:     setID,
		Score:     score,
		Total:     total,
		DateTaken: takenAt,
	})
}

// HistoryFor returns a taker's results, most recent first. Results whose set
// has since been deleted keep their row and render the deleted-set label.
func (s *ResultsService) HistoryFor(ctx context.Context, taker string) ([]domain.Result, error) {
	results, err := s.store.ResultsForTaker(ctx, taker)
	if err != nil {
		return nil, err
	}
	labelDeleted(results)
	return results, nil
}

// AllResults returns every result, most recent first.
func (s *ResultsService) AllResults(ctx context.Context) ([]domain.Result, error) {
	results, err := s.store.AllResults(ctx)
	if err != nil {
		return nil, err
	}
	labelDeleted(results)
	return results, nil
}

// AverageFor reports the mean of score/total across a set's results as a
// percentage. Each result is weighted by its own total, so sets whose
// question count changed over time still average honestly.
func (s *ResultsService) AverageFor(ctx context.Context, setID int64) (domain.Average, error) {
	return s.store.AverageForSet(ctx, setID)
}

// Overview returns the admin dashboard aggregates.
func (s *ResultsService) Overview(ctx context.Context) (domain.Overview, error) {
	return s.dash.Overview(ctx)
}

func labelDeleted(results []domain.Result) {
	for i := range results {
		if results[i].SetName == "" {
			results[i].SetName = domain.DeletedSetLabel
		}
	}
}
