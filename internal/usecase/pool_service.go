package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/platform/id"
	"github.com/lapollita/polla-api/internal/platform/logging"
)

const inviteCodeLength = 8

type CreatePoolInput struct {
	AdminID        string
	Name           string
	LeagueShortcut string
	Season         string
	Notes          string
}

// PoolService manages prediction groups: creation against a real feed
// tournament, invite-code joins and membership listings.
type PoolService struct {
	pools   pool.Repository
	scores  *ScoreService
	matches *MatchService
	ids     id.Generator
	now     func() time.Time
	logger  *logging.Logger
}

func NewPoolService(pools pool.Repository, scores *ScoreService, matches *MatchService, ids id.Generator, logger *logging.Logger) *PoolService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PoolService{
		pools:   pools,
		scores:  scores,
		matches: matches,
		ids:     ids,
		now:     time.Now,
		logger:  logger,
	}
}

// Create opens a new pool for a feed tournament. The creator becomes the
// admin and first participant, with a zero total so standings show them
// right away.
func (s *PoolService) Create(ctx context.Context, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "PoolService.Create")
	defer span.End()

	input.AdminID = strings.TrimSpace(input.AdminID)
	input.Name = strings.TrimSpace(input.Name)
	input.LeagueShortcut = strings.TrimSpace(input.LeagueShortcut)
	input.Season = strings.TrimSpace(input.Season)

	if input.AdminID == "" {
		return pool.Pool{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if input.Name == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool name is required", ErrInvalidInput)
	}
	if input.LeagueShortcut == "" || input.Season == "" {
		return pool.Pool{}, fmt.Errorf("%w: league shortcut and season are required", ErrInvalidInput)
	}

	tournament, found, err := s.matches.FindTournament(ctx, input.LeagueShortcut, input.Season)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("resolve tournament: %w", err)
	}
	if !found {
		return pool.Pool{}, fmt.Errorf("%w: unknown tournament %s/%s", ErrInvalidReference, input.LeagueShortcut, input.Season)
	}

	poolID, err := s.ids.NewID()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate pool id: %w", err)
	}
	inviteCode, err := id.NewInviteCode(inviteCodeLength)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate invite code: %w", err)
	}

	created := pool.Pool{
		ID:             poolID,
		Name:           input.Name,
		Tournament:     tournament.Name,
		LeagueRefID:    tournament.LeagueID,
		LeagueShortcut: tournament.Shortcut,
		Season:         tournament.Season,
		AdminID:        input.AdminID,
		Participants:   []string{input.AdminID},
		Notes:          strings.TrimSpace(input.Notes),
		InviteCode:     inviteCode,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.pools.Create(ctx, created); err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}
	if err := s.scores.EnsureRow(ctx, created.ID, input.AdminID); err != nil {
		return pool.Pool{}, fmt.Errorf("seed admin score: %w", err)
	}

	s.logger.InfoContext(ctx, "pool created",
		"pool_id", created.ID,
		"tournament", created.Tournament,
		"season", created.Season,
	)

	return created, nil
}

// Join adds the caller to the pool behind an invite code. Joining a pool the
// caller already belongs to simply returns it.
func (s *PoolService) Join(ctx context.Context, userID, inviteCode string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "PoolService.Join")
	defer span.End()

	userID = strings.TrimSpace(userID)
	inviteCode = strings.TrimSpace(inviteCode)
	if userID == "" {
		return pool.Pool{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if inviteCode == "" {
		return pool.Pool{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	p, exists, err := s.pools.GetByInviteCode(ctx, strings.ToUpper(inviteCode))
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool by invite code: %w", err)
	}
	if !exists {
		return pool.Pool{}, fmt.Errorf("%w: no pool for invite code", ErrNotFound)
	}
	if p.HasParticipant(userID) {
		return p, nil
	}

	if err := s.pools.AddParticipant(ctx, p.ID, userID); err != nil {
		return pool.Pool{}, fmt.Errorf("add participant: %w", err)
	}
	if err := s.scores.EnsureRow(ctx, p.ID, userID); err != nil {
		return pool.Pool{}, fmt.Errorf("seed participant score: %w", err)
	}

	p.Participants = append(p.Participants, userID)

	s.logger.InfoContext(ctx, "participant joined pool",
		"pool_id", p.ID,
		"user_id", userID,
	)

	return p, nil
}

// ListForUser returns the pools the caller participates in.
func (s *PoolService) ListForUser(ctx context.Context, userID string) ([]pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "PoolService.ListForUser")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	items, err := s.pools.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}

	return items, nil
}

// Get returns one pool, restricted to its participants.
func (s *PoolService) Get(ctx context.Context, poolID, requesterID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "PoolService.Get")
	defer span.End()

	if strings.TrimSpace(requesterID) == "" {
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
		return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	if !p.HasParticipant(requesterID) {
		return pool.Pool{}, fmt.Errorf("%w: user=%s is not a participant of pool=%s", ErrUnauthorized, requesterID, poolID)
	}

	return p, nil
}
