package prediction

import "context"

type Repository interface {
	GetByKey(ctx context.Context, key Key) (Prediction, bool, error)
	ListByUser(ctx context.Context, userID, poolID string) ([]Prediction, error)
	ListByPool(ctx context.Context, poolID string) ([]Prediction, error)
	// Upsert writes by natural key (user, match, pool) and keeps the
	// existing row ID when one is already stored.
	Upsert(ctx context.Context, p Prediction) (Prediction, error)
	// Delete is a no-op when the key is absent.
	Delete(ctx context.Context, key Key) error
}
