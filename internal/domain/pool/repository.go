package pool

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Pool, bool, error)
	GetByInviteCode(ctx context.Context, code string) (Pool, bool, error)
	ListByParticipant(ctx context.Context, userID string) ([]Pool, error)
	ListAll(ctx context.Context) ([]Pool, error)
	Create(ctx context.Context, p Pool) error
	// AddParticipant grows the participant set; adding an existing
	// participant is a no-op.
	AddParticipant(ctx context.Context, poolID, userID string) error
}
