package score

import "context"

type Repository interface {
	GetByPoolAndUser(ctx context.Context, poolID, userID string) (Score, bool, error)
	ListByPool(ctx context.Context, poolID string) ([]Score, error)
	// Upsert writes by (pool, user) and keeps the existing row ID when
	// one is already stored.
	Upsert(ctx context.Context, s Score) (Score, error)
}
