package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/lapollita/polla-api/internal/domain/prediction"
)

func intPtr(v int) *int { return &v }

func TestPredictionRepository_ConcurrentUpsertsSameKeyKeepOneRow(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, prediction.Prediction{
				UserID:  "user-1",
				PoolID:  "pool-1",
				MatchID: 101,
				Home:    intPtr(n),
				Away:    intPtr(0),
			})
			if err != nil {
				t.Errorf("Upsert: %v", err)
			}
		}(i)
	}
	wg.Wait()

	rows, err := repo.ListByUser(ctx, "user-1", "pool-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for the natural key, got %d", len(rows))
	}
	if rows[0].ID == "" {
		t.Fatal("expected the surviving row to carry an id")
	}
}

func TestPredictionRepository_UpsertKeepsRowID(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, prediction.Prediction{
		UserID: "user-1", PoolID: "pool-1", MatchID: 101, Home: intPtr(1), Away: intPtr(0),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, prediction.Prediction{
		UserID: "user-1", PoolID: "pool-1", MatchID: 101, Home: intPtr(3), Away: intPtr(2),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected row id %q kept on update, got %q", first.ID, second.ID)
	}
	if second.Home == nil || *second.Home != 3 {
		t.Fatalf("expected updated values, got %+v", second)
	}
}

func TestPredictionRepository_ReturnsIsolatedCopies(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, prediction.Prediction{
		UserID: "user-1", PoolID: "pool-1", MatchID: 101, Home: intPtr(2), Away: intPtr(1),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	key := prediction.Key{UserID: "user-1", MatchID: 101, PoolID: "pool-1"}
	got, exists, err := repo.GetByKey(ctx, key)
	if err != nil || !exists {
		t.Fatalf("GetByKey: exists=%t err=%v", exists, err)
	}
	*got.Home = 99

	again, _, _ := repo.GetByKey(ctx, key)
	if *again.Home != 2 {
		t.Fatalf("stored row mutated through a returned copy: %+v", again)
	}
}

func TestPredictionRepository_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()
	key := prediction.Key{UserID: "user-1", MatchID: 101, PoolID: "pool-1"}

	if _, err := repo.Upsert(ctx, prediction.Prediction{
		UserID: "user-1", PoolID: "pool-1", MatchID: 101, Home: intPtr(1), Away: intPtr(1),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, exists, _ := repo.GetByKey(ctx, key); exists {
		t.Fatal("expected row gone after delete")
	}
}
