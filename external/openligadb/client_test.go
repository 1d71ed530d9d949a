package openligadb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lapollita/polla-api/internal/platform/logging"
	"github.com/lapollita/polla-api/internal/platform/resilience"
	"github.com/lapollita/polla-api/internal/usecase"
)

const sampleMatchData = `[
  {
    "matchID": 71180,
    "matchDateTimeUTC": "2025-08-22T18:30:00Z",
    "leagueId": 4741,
    "leagueName": "1. Fussball-Bundesliga 2025/2026",
    "leagueSeason": 2025,
    "leagueShortcut": "bl1",
    "lastUpdateDateTime": "2025-08-22T20:35:41.71",
    "matchIsFinished": true,
    "team1": {"teamId": 40, "teamName": "FC Bayern München", "shortName": "FC Bayern", "teamIconUrl": "https://example.com/fcb.svg"},
    "team2": {"teamId": 100, "teamName": "RB Leipzig", "shortName": "Leipzig", "teamIconUrl": "https://example.com/rbl.svg"},
    "matchResults": [
      {"resultID": 110001, "resultName": "Halbzeit", "resultTypeID": 1, "pointsTeam1": 3, "pointsTeam2": 0},
      {"resultID": 110002, "resultName": "Endergebnis", "resultTypeID": 2, "pointsTeam1": 6, "pointsTeam2": 0}
    ]
  },
  {
    "matchID": 71181,
    "matchDateTimeUTC": "2025-08-23T13:30:00Z",
    "leagueId": 4741,
    "leagueName": "1. Fussball-Bundesliga 2025/2026",
    "leagueSeason": 2025,
    "leagueShortcut": "bl1",
    "lastUpdateDateTime": "",
    "matchIsFinished": false,
    "team1": {"teamId": 87, "teamName": "Borussia Mönchengladbach", "shortName": "Gladbach", "teamIconUrl": ""},
    "team2": {"teamId": 16, "teamName": "VfB Stuttgart", "shortName": "Stuttgart", "teamIconUrl": ""},
    "matchResults": []
  }
]`

const sampleLeagues = `[
  {"leagueId": 4741, "leagueName": "1. Fussball-Bundesliga 2025/2026", "leagueShortcut": "bl1", "leagueSeason": "2025"},
  {"leagueId": 4742, "leagueName": "2. Fussball-Bundesliga 2025/2026", "leagueShortcut": "bl2", "leagueSeason": "2025"},
  {"leagueId": 9999, "leagueName": "Placeholder", "leagueShortcut": "", "leagueSeason": "2025"}
]`

func newTestClient(srv *httptest.Server, maxRetries int) *Client {
	return NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		MaxRetries: maxRetries,
		Logger:     logging.NewNop(),
	})
}

func TestMatchesByLeagueSeason(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getmatchdata/bl1/2025" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleMatchData))
	}))
	defer srv.Close()

	matches, err := newTestClient(srv, 0).MatchesByLeagueSeason(context.Background(), "bl1", "2025")
	if err != nil {
		t.Fatalf("MatchesByLeagueSeason error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	first := matches[0]
	if first.ID != 71180 || first.LeagueShortcut != "bl1" || first.Season != "2025" {
		t.Fatalf("unexpected match identity: %+v", first)
	}
	if first.HomeTeam.Name != "FC Bayern München" || first.AwayTeam.ShortName != "Leipzig" {
		t.Fatalf("unexpected teams: %+v %+v", first.HomeTeam, first.AwayTeam)
	}
	if !first.IsFinished {
		t.Fatal("expected first match to be finished")
	}
	if first.KickoffAt != time.Date(2025, 8, 22, 18, 30, 0, 0, time.UTC) {
		t.Fatalf("unexpected kickoff: %v", first.KickoffAt)
	}
	if first.LastUpdatedAt.IsZero() {
		t.Fatal("expected last update timestamp to be parsed")
	}

	final, ok := first.FinalResult()
	if !ok {
		t.Fatal("expected a full-time result")
	}
	if final.HomeGoals != 6 || final.AwayGoals != 0 {
		t.Fatalf("unexpected final score: %+v", final)
	}

	second := matches[1]
	if second.HasFinalResult() {
		t.Fatal("upcoming match must not report a final result")
	}
	if !second.LastUpdatedAt.IsZero() {
		t.Fatalf("expected zero last update, got %v", second.LastUpdatedAt)
	}
}

func TestMatchesByLeagueSeason_RequiresInput(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.MatchesByLeagueSeason(context.Background(), "  ", "2025"); err == nil {
		t.Fatal("expected error for empty shortcut")
	}
	if _, err := client.MatchesByLeagueSeason(context.Background(), "bl1", ""); err == nil {
		t.Fatal("expected error for empty season")
	}
}

func TestAvailableLeagues(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getavailableleagues" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleLeagues))
	}))
	defer srv.Close()

	leagues, err := newTestClient(srv, 0).AvailableLeagues(context.Background())
	if err != nil {
		t.Fatalf("AvailableLeagues error: %v", err)
	}
	if len(leagues) != 2 {
		t.Fatalf("expected entries without shortcut to be skipped, got %d", len(leagues))
	}
	if leagues[0].Shortcut != "bl1" || leagues[0].Season != "2025" || leagues[0].LeagueID != 4741 {
		t.Fatalf("unexpected tournament: %+v", leagues[0])
	}
}

func TestDoJSON_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleLeagues))
	}))
	defer srv.Close()

	leagues, err := newTestClient(srv, 2).AvailableLeagues(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(leagues) != 2 {
		t.Fatalf("unexpected league count after retry: %d", len(leagues))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestDoJSON_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv, 3).AvailableLeagues(context.Background()); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("404 must not be retried, got %d attempts", got)
	}
}

func TestDoJSON_CircuitOpenRejectsRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.AvailableLeagues(context.Background()); err == nil {
		t.Fatal("expected first call to fail")
	}

	_, err := client.AvailableLeagues(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open circuit, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("open circuit must not reach the provider, got %d calls", got)
	}
}
