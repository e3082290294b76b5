package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-service/internal/domain"
)

func TestRecordScoreRange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	setID := env.createSet(t, "Geo", []domain.QuestionDraft{
		{Prompt: "Capital of France?", Answer: "Paris"},
	})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := env.results.Record(ctx, "alice", setID, 2, 1, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for score > total, got %v", err)
	}
	if _, err := env.results.Record(ctx, "alice", setID, -1, 1, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative score, got %v", err)
	}
	if _, err := env.results.Record(ctx, "alice", setID, 1, 1, now); err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestHistoryOrderAndDeletedSetLabel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	geoID := env.createSet(t, "Geo", []domain.QuestionDraft{
		{Prompt: "Capital of France?", Answer: "Paris"},
	})
	mathID := env.createSet(t, "Math", []domain.QuestionDraft{
		{Prompt: "2+2?", Answer: "4"},
	})

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := env.results.Record(ctx, "alice", geoID, 1, 1, base); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := env.results.Record(ctx, "alice", mathID, 0, 1, base.Add(time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := env.catalog.DeleteSet(ctx, geoID); err != nil {
		t.Fatalf("delete set: %v", err)
	}

	history, err := env.results.HistoryFor(ctx, "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 results, got %d", len(history))
	}
	if history[0].SetName != "Math" {
		t.Fatalf("expected most recent first, got %+v", history)
	}
	if history[1].SetName != domain.DeletedSetLabel {
		t.Fatalf("expected deleted set label, got %q", history[1].SetName)
	}
}

func TestAverageForSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	setID := env.createSet(t, "Geo", []domain.QuestionDraft{
		{Prompt: "Capital of France?", Answer: "Paris"},
	})

	avg, err := env.results.AverageFor(ctx, setID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg.HasResults {
		t.Fatalf("expected no-results sentinel, got %+v", avg)
	}
	if avg.String() != "no results" {
		t.Fatalf("unexpected sentinel rendering %q", avg.String())
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// One 1/2 and one 2/3: averages each result's own total.
	if _, err := env.results.Record(ctx, "a", setID, 1, 2, now); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := env.results.Record(ctx, "b", setID, 2, 3, now); err != nil {
		t.Fatalf("record: %v", err)
	}

	avg, err = env.results.AverageFor(ctx, setID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if !avg.HasResults {
		t.Fatalf("expected results, got sentinel")
	}
	// (0.5 + 0.6667)/2 * 100 = 58.33
	if avg.Percent != 58.33 {
		t.Fatalf("expected 58.33, got %v", avg.Percent)
	}
	if avg.String() != "58.33%" {
		t.Fatalf("unexpected rendering %q", avg.String())
	}
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	geoID := env.createSet(t, "Geo", []domain.QuestionDraft{
		{Prompt: "Capital of France?", Answer: "Paris"},
	})
	env.createSet(t, "Math", []domain.QuestionDraft{
		{Prompt: "2+2?", Answer: "4"},
	})

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := env.results.Record(ctx, "alice", geoID, 1, 1, now); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := env.results.Record(ctx, "bob", geoID, 0, 1, now); err != nil {
		t.Fatalf("record: %v", err)
	}

	overview, err := env.results.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.SetCount != 2 || overview.TakerCount != 2 {
		t.Fatalf("unexpected counts %+v", overview)
	}
	if len(overview.SetAverages) != 2 {
		t.Fatalf("expected 2 averages, got %d", len(overview.SetAverages))
	}
	if overview.SetAverages[0].Average.Percent != 50.00 || !overview.SetAverages[0].Average.HasResults {
		t.Fatalf("unexpected Geo average %+v", overview.SetAverages[0])
	}
	if overview.SetAverages[1].Average.HasResults {
		t.Fatalf("expected Math to have no results, got %+v", overview.SetAverages[1])
	}
}
