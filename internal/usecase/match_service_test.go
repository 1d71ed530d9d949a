package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/platform/cache"
)

func TestMatchService_ListMatches_SortsAndCaches(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	feed := &stubMatchFeed{
		matches: map[string][]match.Match{
			feedKey("bl1", "2025"): {
				{ID: 3, KickoffAt: kickoff.Add(2 * time.Hour)},
				{ID: 1, KickoffAt: kickoff},
				{ID: 2, KickoffAt: kickoff},
			},
		},
	}
	service := NewMatchService(feed, cache.NewStore(time.Minute))

	got, err := service.ListMatches(context.Background(), "bl1", "2025")
	if err != nil {
		t.Fatalf("ListMatches error: %v", err)
	}
	if len(got) != 3 || got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := service.ListMatches(context.Background(), "bl1", "2025"); err != nil {
		t.Fatalf("second ListMatches error: %v", err)
	}
	if feed.calls != 1 {
		t.Fatalf("expected one feed call, got %d", feed.calls)
	}
}

func TestMatchService_ListMatches_RequiresShortcutAndSeason(t *testing.T) {
	t.Parallel()

	service := NewMatchService(&stubMatchFeed{}, cache.NewStore(time.Minute))

	if _, err := service.ListMatches(context.Background(), "", "2025"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.ListMatches(context.Background(), "bl1", " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_FindTournament(t *testing.T) {
	t.Parallel()

	feed := &stubMatchFeed{
		leagues: []Tournament{
			{LeagueID: 4741, Name: "1. Bundesliga", Shortcut: "bl1", Season: "2025"},
			{LeagueID: 4742, Name: "2. Bundesliga", Shortcut: "bl2", Season: "2025"},
		},
	}
	service := NewMatchService(feed, cache.NewStore(time.Minute))

	got, found, err := service.FindTournament(context.Background(), "BL1", "2025")
	if err != nil {
		t.Fatalf("FindTournament error: %v", err)
	}
	if !found || got.LeagueID != 4741 {
		t.Fatalf("expected bl1 2025, got found=%t item=%+v", found, got)
	}

	_, found, err = service.FindTournament(context.Background(), "bl1", "1999")
	if err != nil {
		t.Fatalf("FindTournament error: %v", err)
	}
	if found {
		t.Fatal("expected unknown season to miss")
	}
}

func TestMatchService_ListTournaments_PropagatesFeedError(t *testing.T) {
	t.Parallel()

	feed := &stubMatchFeed{err: errors.New("upstream down")}
	service := NewMatchService(feed, cache.NewStore(time.Minute))

	if _, err := service.ListTournaments(context.Background()); err == nil {
		t.Fatal("expected feed error to propagate")
	}
}
