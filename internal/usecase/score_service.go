package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/platform/broadcast"
)

// ScoreTotal is the event published whenever a user's pool total changes.
type ScoreTotal struct {
	PoolID string
	UserID string
	Total  int
}

// ScoreService keeps per-pool point totals in sync with stored predictions
// and broadcasts changes to live listeners.
type ScoreService struct {
	scores      score.Repository
	predictions prediction.Repository
	totals      *broadcast.Broadcaster[ScoreTotal]
}

func NewScoreService(scores score.Repository, predictions prediction.Repository) *ScoreService {
	return &ScoreService{
		scores:      scores,
		predictions: predictions,
		totals:      broadcast.New[ScoreTotal](),
	}
}

// Totals exposes the change feed. Subscribers receive the latest published
// total immediately and latest-wins updates afterwards.
func (s *ScoreService) Totals() *broadcast.Broadcaster[ScoreTotal] {
	return s.totals
}

// RecomputeTotal re-sums the user's prediction points and persists the new
// total. Writing and broadcasting are skipped when the total is unchanged.
func (s *ScoreService) RecomputeTotal(ctx context.Context, poolID, userID string) (score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.RecomputeTotal")
	defer span.End()

	if strings.TrimSpace(poolID) == "" || strings.TrimSpace(userID) == "" {
		return score.Score{}, fmt.Errorf("%w: pool id and user id are required", ErrInvalidInput)
	}

	items, err := s.predictions.ListByUser(ctx, userID, poolID)
	if err != nil {
		return score.Score{}, fmt.Errorf("list predictions: %w", err)
	}

	total := 0
	for _, item := range items {
		total += item.Points
	}

	existing, exists, err := s.scores.GetByPoolAndUser(ctx, poolID, userID)
	if err != nil {
		return score.Score{}, fmt.Errorf("get score: %w", err)
	}
	if exists && existing.Total == total {
		return existing, nil
	}

	saved, err := s.scores.Upsert(ctx, score.Score{
		ID:     existing.ID,
		UserID: userID,
		PoolID: poolID,
		Total:  total,
	})
	if err != nil {
		return score.Score{}, fmt.Errorf("upsert score: %w", err)
	}

	s.totals.Publish(ScoreTotal{PoolID: poolID, UserID: userID, Total: saved.Total})

	return saved, nil
}

// EnsureRow creates a zero-total row for a new participant so they appear in
// standings before their first scored prediction. Existing rows are kept.
func (s *ScoreService) EnsureRow(ctx context.Context, poolID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.EnsureRow")
	defer span.End()

	if strings.TrimSpace(poolID) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: pool id and user id are required", ErrInvalidInput)
	}

	_, exists, err := s.scores.GetByPoolAndUser(ctx, poolID, userID)
	if err != nil {
		return fmt.Errorf("get score: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := s.scores.Upsert(ctx, score.Score{UserID: userID, PoolID: poolID}); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

// ListByPool returns all stored totals for a pool.
func (s *ScoreService) ListByPool(ctx context.Context, poolID string) ([]score.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoreService.ListByPool")
	defer span.End()

	if strings.TrimSpace(poolID) == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	items, err := s.scores.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	return items, nil
}

// Close tears down the totals feed.
func (s *ScoreService) Close() {
	s.totals.Close()
}
