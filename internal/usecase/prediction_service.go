package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
)

type SavePredictionInput struct {
	UserID  string
	PoolID  string
	MatchID int64
	Home    *int
	Away    *int
}

// PredictionService owns the write path for single predictions. Clearing
// both slots removes the stored row instead of keeping an empty one. Saves
// against finished matches settle immediately: the row is scored against the
// final result and the pool total is recomputed before the call returns.
type PredictionService struct {
	pools       pool.Repository
	predictions prediction.Repository
	matches     *MatchService
	scores      *ScoreService
}

func NewPredictionService(pools pool.Repository, predictions prediction.Repository, matches *MatchService, scores *ScoreService) *PredictionService {
	return &PredictionService{
		pools:       pools,
		predictions: predictions,
		matches:     matches,
		scores:      scores,
	}
}

// Save validates and persists one prediction. It returns the stored row and
// true, or a zero row and false when the save cleared an existing one.
// Negative scores are stored as entered; range checks live at the API
// boundary.
func (s *PredictionService) Save(ctx context.Context, input SavePredictionInput) (prediction.Prediction, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.Save")
	defer span.End()

	p, err := s.authorize(ctx, input.UserID, input.PoolID)
	if err != nil {
		return prediction.Prediction{}, false, err
	}
	if input.MatchID <= 0 {
		return prediction.Prediction{}, false, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item := prediction.Prediction{
		UserID:  input.UserID,
		MatchID: input.MatchID,
		PoolID:  input.PoolID,
		Home:    input.Home,
		Away:    input.Away,
	}

	if item.IsCleared() {
		if err := s.predictions.Delete(ctx, item.Key()); err != nil {
			return prediction.Prediction{}, false, fmt.Errorf("delete prediction: %w", err)
		}
		if _, err := s.scores.RecomputeTotal(ctx, input.PoolID, input.UserID); err != nil {
			return prediction.Prediction{}, false, fmt.Errorf("recompute total: %w", err)
		}
		return prediction.Prediction{}, false, nil
	}

	if !item.IsComplete() {
		return prediction.Prediction{}, false, fmt.Errorf("%w: both scores are required", ErrInvalidInput)
	}

	item.SavedDisplay = prediction.Display(item.Home, item.Away)

	if err := s.settleAgainstFinal(ctx, p, &item); err != nil {
		return prediction.Prediction{}, false, err
	}

	saved, err := s.predictions.Upsert(ctx, item)
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("upsert prediction: %w", err)
	}

	if _, err := s.scores.RecomputeTotal(ctx, input.PoolID, input.UserID); err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("recompute total: %w", err)
	}

	return saved, true, nil
}

// settleAgainstFinal scores the row when its match already has a published
// final result. Unknown matches and unfinished ones stay at zero points.
func (s *PredictionService) settleAgainstFinal(ctx context.Context, p pool.Pool, item *prediction.Prediction) error {
	fixtures, err := s.matches.ListMatches(ctx, p.LeagueShortcut, p.Season)
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}

	for _, fixture := range fixtures {
		if fixture.ID != item.MatchID {
			continue
		}
		if final, ok := fixture.FinalResult(); ok {
			item.Points = prediction.Points(item.Home, item.Away, final.HomeGoals, final.AwayGoals)
			item.FinalResult = prediction.Display(&final.HomeGoals, &final.AwayGoals)
		}
		break
	}

	return nil
}

// ListForUser returns the caller's predictions inside one pool.
func (s *PredictionService) ListForUser(ctx context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListForUser")
	defer span.End()

	if _, err := s.authorize(ctx, userID, poolID); err != nil {
		return nil, err
	}

	items, err := s.predictions.ListByUser(ctx, userID, poolID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	return items, nil
}

func (s *PredictionService) authorize(ctx context.Context, userID, poolID string) (pool.Pool, error) {
	if strings.TrimSpace(userID) == "" {
		return pool.Pool{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if strings.TrimSpace(poolID) == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	p, exists, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrInvalidReference, poolID)
	}
	if !p.HasParticipant(userID) {
		return pool.Pool{}, fmt.Errorf("%w: user=%s is not a participant of pool=%s", ErrUnauthorized, userID, poolID)
	}

	return p, nil
}
