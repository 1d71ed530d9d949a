package account

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/lapollita/polla-api/internal/domain/user"
	"github.com/lapollita/polla-api/internal/platform/logging"
	"github.com/lapollita/polla-api/internal/platform/resilience"
	"github.com/lapollita/polla-api/internal/usecase"
)

const maxResponseBytes = 1 << 20

type ClientConfig struct {
	BaseURL        string
	IntrospectPath string
	UsersPath      string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the account service for token introspection and user
// lookups.
type Client struct {
	httpClient     *http.Client
	introspectURL  string
	usersURL       string
	circuitEnabled bool
	breaker        *resilience.CircuitBreaker
	logger         *logging.Logger
}

func NewClient(httpClient *http.Client, cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		usersURL:       buildURL(cfg.BaseURL, cfg.UsersPath),
		circuitEnabled: breakerCfg.Enabled,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		logger:         logger,
	}
}

// VerifyAccessToken introspects a bearer token and returns the caller's
// identity. Denied, inactive, and malformed tokens map to ErrUnauthorized.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("request introspection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return user.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "account introspection non-200",
			"status_code", resp.StatusCode,
		)
		return user.Principal{}, fmt.Errorf("account introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID:   decoded.UserID,
		Username: decoded.Username,
		Email:    decoded.Email,
	}, nil
}

// GetUserByID resolves account data for display purposes. Lookups are
// fail-soft: unreachable or unknown accounts report ok=false so callers can
// degrade to bare user IDs.
func (c *Client) GetUserByID(ctx context.Context, userID string) (user.User, bool) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, false
	}

	if c.circuitEnabled && c.breaker.Allow() != nil {
		c.logger.DebugContext(ctx, "account lookup skipped, circuit open", "user_id", userID)
		return user.User{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.usersURL+"/"+userID, nil)
	if err != nil {
		return user.User{}, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		c.logger.WarnContext(ctx, "account lookup failed", "user_id", userID, "error", err)
		return user.User{}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure()
		return user.User{}, false
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.recordSuccess()
		return user.User{}, false
	case resp.StatusCode != http.StatusOK:
		c.recordFailure()
		c.logger.WarnContext(ctx, "account lookup non-200",
			"user_id", userID,
			"status_code", resp.StatusCode,
		)
		return user.User{}, false
	}

	var decoded userResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		c.recordFailure()
		return user.User{}, false
	}
	c.recordSuccess()

	if strings.TrimSpace(decoded.ID) == "" {
		return user.User{}, false
	}

	return user.User{
		ID:       decoded.ID,
		Username: decoded.Username,
		Email:    decoded.Email,
	}, true
}

func (c *Client) recordSuccess() {
	if c.circuitEnabled {
		c.breaker.RecordSuccess()
	}
}

func (c *Client) recordFailure() {
	if c.circuitEnabled {
		c.breaker.RecordFailure()
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active   bool   `json:"active"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return strings.TrimSuffix(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + strings.TrimSuffix(path, "/")
}
