package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/platform/cache"
)

// MatchService serves fixtures and tournaments from the match feed, shielded
// by a short-lived cache so bursts of pool traffic do not hammer upstream.
type MatchService struct {
	feed  MatchFeed
	cache *cache.Store
}

func NewMatchService(feed MatchFeed, store *cache.Store) *MatchService {
	return &MatchService{
		feed:  feed,
		cache: store,
	}
}

func (s *MatchService) ListMatches(ctx context.Context, shortcut, season string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListMatches")
	defer span.End()

	shortcut = strings.TrimSpace(shortcut)
	season = strings.TrimSpace(season)
	if shortcut == "" {
		return nil, fmt.Errorf("%w: league shortcut is required", ErrInvalidInput)
	}
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	key := "matches:" + shortcut + ":" + season
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := s.feed.MatchesByLeagueSeason(ctx, shortcut, season)
		if err != nil {
			return nil, fmt.Errorf("fetch matches: %w", err)
		}

		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
				return items[i].KickoffAt.Before(items[j].KickoffAt)
			}
			return items[i].ID < items[j].ID
		})
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	items, ok := value.([]match.Match)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry for %s", key)
	}

	return items, nil
}

func (s *MatchService) ListTournaments(ctx context.Context) ([]Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListTournaments")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, "tournaments", func(ctx context.Context) (any, error) {
		items, err := s.feed.AvailableLeagues(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch tournaments: %w", err)
		}

		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Name != items[j].Name {
				return items[i].Name < items[j].Name
			}
			return items[i].Season < items[j].Season
		})
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	items, ok := value.([]Tournament)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry for tournaments")
	}

	return items, nil
}

// FindTournament resolves a (shortcut, season) pair against the feed's
// available leagues.
func (s *MatchService) FindTournament(ctx context.Context, shortcut, season string) (Tournament, bool, error) {
	shortcut = strings.TrimSpace(shortcut)
	season = strings.TrimSpace(season)
	if shortcut == "" || season == "" {
		return Tournament{}, false, fmt.Errorf("%w: league shortcut and season are required", ErrInvalidInput)
	}

	items, err := s.ListTournaments(ctx)
	if err != nil {
		return Tournament{}, false, err
	}

	for _, item := range items {
		if strings.EqualFold(item.Shortcut, shortcut) && item.Season == season {
			return item, true, nil
		}
	}

	return Tournament{}, false, nil
}
