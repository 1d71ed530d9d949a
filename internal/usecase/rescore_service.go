package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/platform/logging"
)

// RescoreResult summarizes one pool rescore run.
type RescoreResult struct {
	PoolID          string
	FinishedMatches int
	Scored          int
	Updated         int
	UsersRecomputed int
}

type rescorePoolJob struct {
	PoolID string `json:"poolId"`
}

// RescoreService settles pools against fresh feed results. It runs from the
// internal job endpoints, either for one pool or fanned out over all of them.
type RescoreService struct {
	pools       pool.Repository
	predictions prediction.Repository
	matches     *MatchService
	scores      *ScoreService
	jobs        JobPublisher
	now         func() time.Time
	logger      *logging.Logger
}

func NewRescoreService(
	pools pool.Repository,
	predictions prediction.Repository,
	matches *MatchService,
	scores *ScoreService,
	jobs JobPublisher,
	logger *logging.Logger,
) *RescoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RescoreService{
		pools:       pools,
		predictions: predictions,
		matches:     matches,
		scores:      scores,
		jobs:        jobs,
		now:         time.Now,
		logger:      logger,
	}
}

// RescorePool refreshes fixtures for one pool's tournament and settles every
// stored prediction against the published finals. Totals are recomputed once
// per affected user.
func (s *RescoreService) RescorePool(ctx context.Context, poolID string) (RescoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "RescoreService.RescorePool")
	defer span.End()

	if strings.TrimSpace(poolID) == "" {
		return RescoreResult{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	p, exists, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return RescoreResult{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return RescoreResult{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	fixtures, err := s.matches.ListMatches(ctx, p.LeagueShortcut, p.Season)
	if err != nil {
		return RescoreResult{}, fmt.Errorf("load fixtures: %w", err)
	}

	finals := make(map[int64]match.Result, len(fixtures))
	for _, fixture := range fixtures {
		if final, ok := fixture.FinalResult(); ok {
			finals[fixture.ID] = final
		}
	}

	items, err := s.predictions.ListByPool(ctx, poolID)
	if err != nil {
		return RescoreResult{}, fmt.Errorf("list predictions: %w", err)
	}

	result := RescoreResult{PoolID: poolID, FinishedMatches: len(finals)}
	affected := make(map[string]struct{})
	for _, item := range items {
		final, ok := finals[item.MatchID]
		if !ok {
			continue
		}
		result.Scored++

		points := prediction.Points(item.Home, item.Away, final.HomeGoals, final.AwayGoals)
		display := prediction.Display(&final.HomeGoals, &final.AwayGoals)
		if item.Points == points && item.FinalResult == display {
			continue
		}

		item.Points = points
		item.FinalResult = display
		if _, err := s.predictions.Upsert(ctx, item); err != nil {
			return result, fmt.Errorf("rescore prediction match=%d user=%s: %w", item.MatchID, item.UserID, err)
		}
		result.Updated++
		affected[item.UserID] = struct{}{}
	}

	for userID := range affected {
		if _, err := s.scores.RecomputeTotal(ctx, poolID, userID); err != nil {
			return result, fmt.Errorf("recompute total user=%s: %w", userID, err)
		}
		result.UsersRecomputed++
	}

	s.logger.InfoContext(ctx, "pool rescored",
		"pool_id", poolID,
		"finished_matches", result.FinishedMatches,
		"scored", result.Scored,
		"updated", result.Updated,
		"users_recomputed", result.UsersRecomputed,
	)

	return result, nil
}

// ScheduleAll enqueues one rescore job per pool. Deduplication keys the jobs
// by pool and hour so overlapping schedules collapse into one run.
func (s *RescoreService) ScheduleAll(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "RescoreService.ScheduleAll")
	defer span.End()

	if s.jobs == nil {
		return 0, fmt.Errorf("%w: job publisher is not configured", ErrDependencyUnavailable)
	}

	pools, err := s.pools.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pools: %w", err)
	}

	window := s.now().UTC().Format("2006010215")
	enqueued := 0
	for _, p := range pools {
		dedupID := "rescore:" + p.ID + ":" + window
		if err := s.jobs.Publish(ctx, "/v1/internal/jobs/rescore", rescorePoolJob{PoolID: p.ID}, dedupID); err != nil {
			return enqueued, fmt.Errorf("enqueue rescore pool=%s: %w", p.ID, err)
		}
		enqueued++
	}

	s.logger.InfoContext(ctx, "rescore jobs scheduled", "pools", enqueued)

	return enqueued, nil
}
