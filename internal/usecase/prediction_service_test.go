package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/platform/cache"
)

func testPool(participants ...string) pool.Pool {
	return pool.Pool{
		ID:             "pool-1",
		LeagueShortcut: "bl1",
		Season:         "2025",
		Participants:   participants,
	}
}

func newPredictionFixture(t *testing.T, pools *stubPoolRepository, predictions *stubPredictionRepository, fixtures ...match.Match) (*PredictionService, *stubScoreRepository) {
	t.Helper()

	scores := newStubScoreRepository()
	scoreSvc := NewScoreService(scores, predictions)
	t.Cleanup(scoreSvc.Close)

	feed := &stubMatchFeed{matches: map[string][]match.Match{
		feedKey("bl1", "2025"): fixtures,
	}}
	matchSvc := NewMatchService(feed, cache.NewStore(time.Minute))

	return NewPredictionService(pools, predictions, matchSvc, scoreSvc), scores
}

func TestPredictionService_Save_PersistsCompletePrediction(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	predictions := newStubPredictionRepository()
	service, _ := newPredictionFixture(t, pools, predictions, match.Match{ID: 101})

	saved, stored, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(2),
		Away:    intPtr(1),
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !stored {
		t.Fatal("expected prediction to be stored")
	}
	if saved.SavedDisplay != "2 - 1" {
		t.Fatalf("SavedDisplay = %q", saved.SavedDisplay)
	}
	if saved.ID == "" {
		t.Fatal("expected generated row id")
	}
	// Match still pending, nothing to settle against.
	if saved.Points != 0 || saved.FinalResult != "" {
		t.Fatalf("pending match must not be scored: %+v", saved)
	}
}

func TestPredictionService_Save_SettlesAgainstFinishedMatch(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	predictions := newStubPredictionRepository()
	service, scores := newPredictionFixture(t, pools, predictions, finishedMatch(101, 2, 1))

	saved, stored, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(2),
		Away:    intPtr(1),
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !stored {
		t.Fatal("expected prediction to be stored")
	}
	if saved.Points != prediction.MaxPoints {
		t.Fatalf("exact hit must settle at max points, got %d", saved.Points)
	}
	if saved.FinalResult != "2 - 1" {
		t.Fatalf("FinalResult = %q", saved.FinalResult)
	}

	total, exists, _ := scores.GetByPoolAndUser(context.Background(), "pool-1", "user-1")
	if !exists || total.Total != prediction.MaxPoints {
		t.Fatalf("total not recomputed after save: exists=%t %+v", exists, total)
	}
}

func TestPredictionService_Save_KeepsRowIDOnUpdate(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	predictions := newStubPredictionRepository(prediction.Prediction{
		ID:      "pred-existing",
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(0),
		Away:    intPtr(0),
	})
	service, _ := newPredictionFixture(t, pools, predictions, match.Match{ID: 101})

	saved, _, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(3),
		Away:    intPtr(1),
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if saved.ID != "pred-existing" {
		t.Fatalf("expected row id kept, got %q", saved.ID)
	}
}

func TestPredictionService_Save_ClearedPairDeletesRowAndRecomputes(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	predictions := newStubPredictionRepository(prediction.Prediction{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(2),
		Away:    intPtr(1),
		Points:  prediction.MaxPoints,
	})
	service, scores := newPredictionFixture(t, pools, predictions, finishedMatch(101, 2, 1))
	if _, err := scores.Upsert(context.Background(), score.Score{UserID: "user-1", PoolID: "pool-1", Total: prediction.MaxPoints}); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	_, stored, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if stored {
		t.Fatal("expected cleared save to report not stored")
	}

	key := prediction.Key{UserID: "user-1", MatchID: 101, PoolID: "pool-1"}
	if _, exists, _ := predictions.GetByKey(context.Background(), key); exists {
		t.Fatal("expected row to be deleted")
	}
	total, _, _ := scores.GetByPoolAndUser(context.Background(), "pool-1", "user-1")
	if total.Total != 0 {
		t.Fatalf("expected total back at 0 after clearing, got %d", total.Total)
	}
}

func TestPredictionService_Save_RejectsHalfFilledPair(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	service, _ := newPredictionFixture(t, pools, newStubPredictionRepository())

	_, _, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(2),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictionService_Save_AcceptsNegativeScoresAsEntered(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	predictions := newStubPredictionRepository()
	service, _ := newPredictionFixture(t, pools, predictions, match.Match{ID: 101})

	saved, stored, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(-1),
		Away:    intPtr(0),
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !stored || saved.Home == nil || *saved.Home != -1 {
		t.Fatalf("expected negative value stored as entered, got %+v", saved)
	}
}

func TestPredictionService_Save_RejectsNonParticipant(t *testing.T) {
	t.Parallel()

	pools := newStubPoolRepository(testPool("user-1"))
	service, _ := newPredictionFixture(t, pools, newStubPredictionRepository())

	_, _, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "stranger",
		PoolID:  "pool-1",
		MatchID: 101,
		Home:    intPtr(1),
		Away:    intPtr(1),
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPredictionService_Save_RejectsUnknownPool(t *testing.T) {
	t.Parallel()

	service, _ := newPredictionFixture(t, newStubPoolRepository(), newStubPredictionRepository())

	_, _, err := service.Save(context.Background(), SavePredictionInput{
		UserID:  "user-1",
		PoolID:  "ghost",
		MatchID: 101,
		Home:    intPtr(1),
		Away:    intPtr(1),
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}
