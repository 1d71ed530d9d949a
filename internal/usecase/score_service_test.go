package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/domain/score"
)

func TestScoreService_RecomputeTotal_SumsPredictionPoints(t *testing.T) {
	t.Parallel()

	predictions := newStubPredictionRepository(
		prediction.Prediction{UserID: "user-1", PoolID: "pool-1", MatchID: 1, Points: 10},
		prediction.Prediction{UserID: "user-1", PoolID: "pool-1", MatchID: 2, Points: 7},
		prediction.Prediction{UserID: "user-2", PoolID: "pool-1", MatchID: 1, Points: 5},
		prediction.Prediction{UserID: "user-1", PoolID: "pool-2", MatchID: 1, Points: 9},
	)
	scores := newStubScoreRepository()
	service := NewScoreService(scores, predictions)
	defer service.Close()

	got, err := service.RecomputeTotal(context.Background(), "pool-1", "user-1")
	if err != nil {
		t.Fatalf("RecomputeTotal error: %v", err)
	}
	if got.Total != 17 {
		t.Fatalf("Total = %d, want 17", got.Total)
	}
}

func TestScoreService_RecomputeTotal_SkipsWriteWhenUnchanged(t *testing.T) {
	t.Parallel()

	predictions := newStubPredictionRepository(
		prediction.Prediction{UserID: "user-1", PoolID: "pool-1", MatchID: 1, Points: 10},
	)
	scores := newStubScoreRepository(score.Score{UserID: "user-1", PoolID: "pool-1", Total: 10})
	service := NewScoreService(scores, predictions)
	defer service.Close()

	got, err := service.RecomputeTotal(context.Background(), "pool-1", "user-1")
	if err != nil {
		t.Fatalf("RecomputeTotal error: %v", err)
	}
	if got.Total != 10 {
		t.Fatalf("Total = %d, want 10", got.Total)
	}
	if scores.upserts != 0 {
		t.Fatalf("expected no write for unchanged total, got %d", scores.upserts)
	}
	if _, ok := service.Totals().Latest(); ok {
		t.Fatal("expected no broadcast for unchanged total")
	}
}

func TestScoreService_RecomputeTotal_KeepsRowIDAndBroadcasts(t *testing.T) {
	t.Parallel()

	predictions := newStubPredictionRepository(
		prediction.Prediction{UserID: "user-1", PoolID: "pool-1", MatchID: 1, Points: 8},
	)
	scores := newStubScoreRepository(score.Score{ID: "score-keep", UserID: "user-1", PoolID: "pool-1", Total: 3})
	service := NewScoreService(scores, predictions)
	defer service.Close()

	updates, cancel := service.Totals().Subscribe()
	defer cancel()

	got, err := service.RecomputeTotal(context.Background(), "pool-1", "user-1")
	if err != nil {
		t.Fatalf("RecomputeTotal error: %v", err)
	}
	if got.ID != "score-keep" || got.Total != 8 {
		t.Fatalf("unexpected saved score: %+v", got)
	}

	select {
	case update := <-updates:
		if update.PoolID != "pool-1" || update.UserID != "user-1" || update.Total != 8 {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a total update")
	}
}

func TestScoreService_EnsureRow(t *testing.T) {
	t.Parallel()

	scores := newStubScoreRepository(score.Score{UserID: "user-1", PoolID: "pool-1", Total: 42})
	service := NewScoreService(scores, newStubPredictionRepository())
	defer service.Close()

	// Existing rows must survive, new participants start at zero.
	if err := service.EnsureRow(context.Background(), "pool-1", "user-1"); err != nil {
		t.Fatalf("EnsureRow error: %v", err)
	}
	kept, _, _ := scores.GetByPoolAndUser(context.Background(), "pool-1", "user-1")
	if kept.Total != 42 {
		t.Fatalf("existing total overwritten: %+v", kept)
	}

	if err := service.EnsureRow(context.Background(), "pool-1", "user-2"); err != nil {
		t.Fatalf("EnsureRow error: %v", err)
	}
	created, exists, _ := scores.GetByPoolAndUser(context.Background(), "pool-1", "user-2")
	if !exists || created.Total != 0 {
		t.Fatalf("expected zero row, got exists=%t %+v", exists, created)
	}
}
