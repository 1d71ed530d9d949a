package usecase

import (
	"context"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/user"
)

// Tournament is a league season offered by the match feed.
type Tournament struct {
	LeagueID int64
	Name     string
	Shortcut string
	Season   string
}

// MatchFeed is the upstream provider of fixtures and results.
type MatchFeed interface {
	MatchesByLeagueSeason(ctx context.Context, shortcut, season string) ([]match.Match, error)
	AvailableLeagues(ctx context.Context) ([]Tournament, error)
}

// IdentityProvider resolves account data for participants. Lookups are
// fail-soft: an unknown or unreachable user reports ok=false, not an error.
type IdentityProvider interface {
	GetUserByID(ctx context.Context, userID string) (user.User, bool)
}

// JobPublisher enqueues deferred work on the external job queue.
type JobPublisher interface {
	Publish(ctx context.Context, path string, payload any, dedupID string) error
}
