package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	concpool "github.com/sourcegraph/conc/pool"

	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/platform/logging"
)

const identityResolveWorkers = 8

// Standing is one row of a pool's leaderboard.
type Standing struct {
	Rank     int
	UserID   string
	Username string
	Total    int
}

// RankingService builds pool leaderboards from stored totals, resolving
// display names through the identity provider.
type RankingService struct {
	pools    pool.Repository
	scores   score.Repository
	identity IdentityProvider
	logger   *logging.Logger
}

func NewRankingService(pools pool.Repository, scores score.Repository, identity IdentityProvider, logger *logging.Logger) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		pools:    pools,
		scores:   scores,
		identity: identity,
		logger:   logger,
	}
}

// Standings returns the pool leaderboard ordered by total descending.
// Ties share order by username, then user ID, so the ranking is stable
// across refreshes. Participants whose identity lookup fails are logged
// and left out of the board entirely.
func (s *RankingService) Standings(ctx context.Context, poolID, requesterID string) ([]Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "RankingService.Standings")
	defer span.End()

	if strings.TrimSpace(requesterID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if strings.TrimSpace(poolID) == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	p, exists, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	if !p.HasParticipant(requesterID) {
		return nil, fmt.Errorf("%w: user=%s is not a participant of pool=%s", ErrUnauthorized, requesterID, poolID)
	}

	totals, err := s.scores.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	totalByUser := make(map[string]int, len(totals))
	for _, item := range totals {
		totalByUser[item.UserID] = item.Total
	}

	resolved := make([]Standing, len(p.Participants))
	ok := make([]bool, len(p.Participants))
	workers := concpool.New().WithMaxGoroutines(identityResolveWorkers)
	for i, userID := range p.Participants {
		i, userID := i, userID
		workers.Go(func() {
			account, found := s.identity.GetUserByID(ctx, userID)
			if !found {
				s.logger.WarnContext(ctx, "identity lookup failed, excluding participant from standings",
					"user_id", userID,
					"pool_id", poolID,
				)
				return
			}
			resolved[i] = Standing{UserID: userID, Username: account.Username, Total: totalByUser[userID]}
			ok[i] = true
		})
	}
	workers.Wait()

	standings := make([]Standing, 0, len(resolved))
	for i, row := range resolved {
		if ok[i] {
			standings = append(standings, row)
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Total != standings[j].Total {
			return standings[i].Total > standings[j].Total
		}
		if standings[i].Username != standings[j].Username {
			return standings[i].Username < standings[j].Username
		}
		return standings[i].UserID < standings[j].UserID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, nil
}

// RankFor locates a user's rank inside already-built standings. A user with
// no row ranks after everyone; an empty board ranks them first.
func RankFor(standings []Standing, userID string) int {
	for _, row := range standings {
		if row.UserID == userID {
			return row.Rank
		}
	}
	if len(standings) == 0 {
		return 1
	}
	return len(standings) + 1
}
