package openligadb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/platform/logging"
	"github.com/lapollita/polla-api/internal/platform/resilience"
	"github.com/lapollita/polla-api/internal/usecase"
)

const defaultBaseURL = "https://api.openligadb.de"

var errOpenLigaTransient = crerr.New("openligadb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches fixtures and league lists from the OpenLigaDB public API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) MatchesByLeagueSeason(ctx context.Context, shortcut, season string) ([]match.Match, error) {
	shortcut = strings.TrimSpace(shortcut)
	season = strings.TrimSpace(season)
	if shortcut == "" {
		return nil, fmt.Errorf("league shortcut is required")
	}
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}

	path := "/getmatchdata/" + url.PathEscape(shortcut) + "/" + url.PathEscape(season)
	var items []matchItem
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetch matchdata shortcut=%s season=%s: %w", shortcut, season, err)
	}

	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) AvailableLeagues(ctx context.Context) ([]usecase.Tournament, error) {
	var items []leagueItem
	if err := c.doJSON(ctx, "/getavailableleagues", &items); err != nil {
		return nil, fmt.Errorf("fetch available leagues: %w", err)
	}

	out := make([]usecase.Tournament, 0, len(items))
	for _, item := range items {
		shortcut := strings.TrimSpace(item.LeagueShortcut)
		season := strings.TrimSpace(item.LeagueSeason)
		if shortcut == "" || season == "" {
			continue
		}
		out = append(out, usecase.Tournament{
			LeagueID: item.LeagueID,
			Name:     strings.TrimSpace(item.LeagueName),
			Shortcut: shortcut,
			Season:   season,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "openligadb circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isOpenLigaCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errOpenLigaTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errOpenLigaTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errOpenLigaTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "openligadb request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isOpenLigaCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errOpenLigaTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type teamItem struct {
	TeamID    int64  `json:"teamId"`
	TeamName  string `json:"teamName"`
	ShortName string `json:"shortName"`
	IconURL   string `json:"teamIconUrl"`
}

type resultItem struct {
	ResultID     int64  `json:"resultID"`
	ResultName   string `json:"resultName"`
	ResultTypeID int    `json:"resultTypeID"`
	PointsTeam1  int    `json:"pointsTeam1"`
	PointsTeam2  int    `json:"pointsTeam2"`
}

// matchItem carries leagueSeason as a number, unlike the leagues listing
// where the same field is a string.
type matchItem struct {
	MatchID            int64        `json:"matchID"`
	LeagueID           int64        `json:"leagueId"`
	LeagueName         string       `json:"leagueName"`
	LeagueShortcut     string       `json:"leagueShortcut"`
	LeagueSeason       int          `json:"leagueSeason"`
	MatchDateTimeUTC   time.Time    `json:"matchDateTimeUTC"`
	Team1              teamItem     `json:"team1"`
	Team2              teamItem     `json:"team2"`
	MatchIsFinished    bool         `json:"matchIsFinished"`
	LastUpdateDateTime string       `json:"lastUpdateDateTime"`
	MatchResults       []resultItem `json:"matchResults"`
}

type leagueItem struct {
	LeagueID       int64  `json:"leagueId"`
	LeagueName     string `json:"leagueName"`
	LeagueShortcut string `json:"leagueShortcut"`
	LeagueSeason   string `json:"leagueSeason"`
}

func (m matchItem) toDomain() match.Match {
	results := make([]match.Result, 0, len(m.MatchResults))
	for _, item := range m.MatchResults {
		results = append(results, match.Result{
			ResultID:  item.ResultID,
			Name:      strings.TrimSpace(item.ResultName),
			TypeID:    item.ResultTypeID,
			HomeGoals: item.PointsTeam1,
			AwayGoals: item.PointsTeam2,
		})
	}

	return match.Match{
		ID:             m.MatchID,
		LeagueID:       m.LeagueID,
		LeagueName:     strings.TrimSpace(m.LeagueName),
		LeagueShortcut: strings.TrimSpace(m.LeagueShortcut),
		Season:         strconv.Itoa(m.LeagueSeason),
		KickoffAt:      m.MatchDateTimeUTC,
		HomeTeam:       teamToDomain(m.Team1),
		AwayTeam:       teamToDomain(m.Team2),
		IsFinished:     m.MatchIsFinished,
		LastUpdatedAt:  parseProviderDateTime(m.LastUpdateDateTime),
		Results:        results,
	}
}

func teamToDomain(item teamItem) match.Team {
	return match.Team{
		ID:        item.TeamID,
		Name:      strings.TrimSpace(item.TeamName),
		ShortName: strings.TrimSpace(item.ShortName),
		IconURL:   strings.TrimSpace(item.IconURL),
	}
}

// parseProviderDateTime copes with the provider's timezone-less timestamps.
func parseProviderDateTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
