package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/platform/logging"
)

type SessionState string

const (
	SessionUninitialized  SessionState = "uninitialized"
	SessionFixturesLoaded SessionState = "fixtures_loaded"
	SessionReady          SessionState = "ready"
)

const defaultSessionWorkers = 4

// SessionEntry is one edited slot pair submitted from a prediction form.
type SessionEntry struct {
	MatchID int64
	Home    *int
	Away    *int
}

// SessionMatch pairs a fixture with the caller's stored prediction for it.
type SessionMatch struct {
	Match         match.Match
	Prediction    prediction.Prediction
	HasPrediction bool
}

// SessionView is the assembled prediction-form state for one user in one pool.
type SessionView struct {
	State   SessionState
	PoolID  string
	UserID  string
	Matches []SessionMatch
	Total   int
}

type session struct {
	userID string
	poolID string

	mu       sync.Mutex
	state    SessionState
	matches  []match.Match
	stored   map[int64]prediction.Prediction
	total    int
	saving   atomic.Bool
	cancelFn func()
}

func (s *session) snapshot() map[int64]prediction.Prediction {
	out := make(map[int64]prediction.Prediction, len(s.stored))
	for k, v := range s.stored {
		out[k] = v
	}
	return out
}

// SessionService drives the prediction-form lifecycle: loading fixtures and
// stored predictions, batch-saving edits, and streaming total updates while
// the form stays open.
type SessionService struct {
	pools       pool.Repository
	predictions prediction.Repository
	matches     *MatchService
	scores      *ScoreService
	workers     *ants.Pool
	logger      *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionService(
	pools pool.Repository,
	predictions prediction.Repository,
	matches *MatchService,
	scores *ScoreService,
	workerCount int,
	logger *logging.Logger,
) (*SessionService, error) {
	if workerCount <= 0 {
		workerCount = defaultSessionWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create session worker pool: %w", err)
	}

	return &SessionService{
		pools:       pools,
		predictions: predictions,
		matches:     matches,
		scores:      scores,
		workers:     workers,
		logger:      logger,
		sessions:    make(map[string]*session),
	}, nil
}

func sessionKey(userID, poolID string) string {
	return userID + "::" + poolID
}

// Open loads (or reloads) the prediction session for one user in one pool.
// Stored predictions against matches that finished since the last visit are
// rescored before the view is returned.
func (s *SessionService) Open(ctx context.Context, userID, poolID string) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, "SessionService.Open")
	defer span.End()

	p, err := s.authorize(ctx, userID, poolID)
	if err != nil {
		return SessionView{}, err
	}

	sess := s.obtain(userID, poolID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	fixtures, err := s.matches.ListMatches(ctx, p.LeagueShortcut, p.Season)
	if err != nil {
		return SessionView{}, fmt.Errorf("load fixtures: %w", err)
	}
	sess.matches = fixtures
	sess.state = SessionFixturesLoaded

	items, err := s.predictions.ListByUser(ctx, userID, poolID)
	if err != nil {
		return SessionView{}, fmt.Errorf("load predictions: %w", err)
	}
	stored := make(map[int64]prediction.Prediction, len(items))
	for _, item := range items {
		stored[item.MatchID] = item
	}
	sess.stored = stored

	if err := s.rescoreStale(ctx, sess); err != nil {
		return SessionView{}, err
	}

	current, exists, err := s.scores.scores.GetByPoolAndUser(ctx, poolID, userID)
	if err != nil {
		return SessionView{}, fmt.Errorf("get score: %w", err)
	}
	if exists {
		sess.total = current.Total
	}

	s.watchTotals(sess)
	sess.state = SessionReady

	return s.viewLocked(sess), nil
}

// rescoreStale walks stored predictions against finished matches and
// persists rows whose points or final score drifted from the feed. A single
// total recompute follows when anything changed.
func (s *SessionService) rescoreStale(ctx context.Context, sess *session) error {
	changed := false
	for _, fixture := range sess.matches {
		final, ok := fixture.FinalResult()
		if !ok {
			continue
		}
		item, has := sess.stored[fixture.ID]
		if !has {
			continue
		}

		points := prediction.Points(item.Home, item.Away, final.HomeGoals, final.AwayGoals)
		display := prediction.Display(&final.HomeGoals, &final.AwayGoals)
		if item.Points == points && item.FinalResult == display {
			continue
		}

		item.Points = points
		item.FinalResult = display
		saved, err := s.predictions.Upsert(ctx, item)
		if err != nil {
			return fmt.Errorf("rescore prediction: %w", err)
		}
		sess.stored[fixture.ID] = saved
		changed = true
	}

	if !changed {
		return nil
	}

	updated, err := s.scores.RecomputeTotal(ctx, sess.poolID, sess.userID)
	if err != nil {
		return fmt.Errorf("recompute total: %w", err)
	}
	sess.total = updated.Total

	return nil
}

// SaveAll persists a batch of edited predictions. A save that arrives while
// another one for the same session is still settling is ignored. On any
// write failure the session's view of stored rows is rolled back.
func (s *SessionService) SaveAll(ctx context.Context, userID, poolID string, entries []SessionEntry) error {
	ctx, span := startUsecaseSpan(ctx, "SessionService.SaveAll")
	defer span.End()

	if _, err := s.authorize(ctx, userID, poolID); err != nil {
		return err
	}

	sess := s.obtain(userID, poolID)
	if !sess.saving.CompareAndSwap(false, true) {
		return nil
	}
	defer sess.saving.Store(false)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == SessionUninitialized {
		return fmt.Errorf("%w: session is not open", ErrInvalidInput)
	}

	finals := make(map[int64]match.Result, len(sess.matches))
	for _, fixture := range sess.matches {
		if final, ok := fixture.FinalResult(); ok {
			finals[fixture.ID] = final
		}
	}

	var upserts []prediction.Prediction
	var deletes []prediction.Key
	for _, entry := range entries {
		if entry.MatchID <= 0 {
			return fmt.Errorf("%w: match id is required", ErrInvalidInput)
		}

		item := prediction.Prediction{
			UserID:  userID,
			MatchID: entry.MatchID,
			PoolID:  poolID,
			Home:    entry.Home,
			Away:    entry.Away,
		}

		if item.IsCleared() {
			if _, has := sess.stored[entry.MatchID]; has {
				deletes = append(deletes, item.Key())
			}
			continue
		}
		if !item.IsComplete() {
			return fmt.Errorf("%w: both scores are required for match=%d", ErrInvalidInput, entry.MatchID)
		}

		item.SavedDisplay = prediction.Display(item.Home, item.Away)
		if existing, has := sess.stored[entry.MatchID]; has {
			item.ID = existing.ID
		}
		if final, ok := finals[entry.MatchID]; ok {
			item.Points = prediction.Points(item.Home, item.Away, final.HomeGoals, final.AwayGoals)
			item.FinalResult = prediction.Display(&final.HomeGoals, &final.AwayGoals)
		}
		upserts = append(upserts, item)
	}

	if len(upserts) == 0 && len(deletes) == 0 {
		return nil
	}

	before := sess.snapshot()

	// Writes keep going even if the caller hangs up mid-save, so the batch
	// never lands half-applied because of a closed connection.
	writeCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	var writeMu sync.Mutex
	var writeErr error

	record := func(err error) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if writeErr == nil {
			writeErr = err
		}
	}

	for _, item := range upserts {
		item := item
		wg.Add(1)
		if err := s.workers.Submit(func() {
			defer wg.Done()
			saved, err := s.predictions.Upsert(writeCtx, item)
			if err != nil {
				record(fmt.Errorf("upsert prediction match=%d: %w", item.MatchID, err))
				return
			}
			writeMu.Lock()
			sess.stored[saved.MatchID] = saved
			writeMu.Unlock()
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit prediction write: %w", err)
		}
	}
	for _, key := range deletes {
		key := key
		wg.Add(1)
		if err := s.workers.Submit(func() {
			defer wg.Done()
			if err := s.predictions.Delete(writeCtx, key); err != nil {
				record(fmt.Errorf("delete prediction match=%d: %w", key.MatchID, err))
				return
			}
			writeMu.Lock()
			delete(sess.stored, key.MatchID)
			writeMu.Unlock()
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit prediction delete: %w", err)
		}
	}
	wg.Wait()

	if writeErr != nil {
		sess.stored = before
		return writeErr
	}

	updated, err := s.scores.RecomputeTotal(writeCtx, poolID, userID)
	if err != nil {
		return fmt.Errorf("recompute total: %w", err)
	}
	sess.total = updated.Total

	s.logger.InfoContext(ctx, "prediction batch saved",
		"pool_id", poolID,
		"user_id", userID,
		"upserts", len(upserts),
		"deletes", len(deletes),
	)

	return nil
}

// View returns the current session state without touching storage.
func (s *SessionService) View(ctx context.Context, userID, poolID string) (SessionView, error) {
	if _, err := s.authorize(ctx, userID, poolID); err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(userID, poolID)]
	s.mu.Unlock()
	if !ok {
		return SessionView{State: SessionUninitialized, PoolID: poolID, UserID: userID}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// Teardown closes the session and stops its total updates. Stored
// predictions are untouched.
func (s *SessionService) Teardown(userID, poolID string) {
	s.mu.Lock()
	key := sessionKey(userID, poolID)
	sess, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	cancel := sess.cancelFn
	sess.cancelFn = nil
	sess.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close tears down every open session and releases the worker pool.
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for key, sess := range s.sessions {
		sessions = append(sessions, sess)
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		cancel := sess.cancelFn
		sess.cancelFn = nil
		sess.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}

	s.workers.Release()
}

func (s *SessionService) authorize(ctx context.Context, userID, poolID string) (pool.Pool, error) {
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
		return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	if !p.HasParticipant(userID) {
		return pool.Pool{}, fmt.Errorf("%w: user=%s is not a participant of pool=%s", ErrUnauthorized, userID, poolID)
	}

	return p, nil
}

func (s *SessionService) obtain(userID, poolID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID, poolID)
	if sess, ok := s.sessions[key]; ok {
		return sess
	}

	sess := &session{
		userID: userID,
		poolID: poolID,
		state:  SessionUninitialized,
		stored: make(map[int64]prediction.Prediction),
	}
	s.sessions[key] = sess
	return sess
}

// watchTotals keeps the session's total current while the form stays open.
// Caller holds sess.mu.
func (s *SessionService) watchTotals(sess *session) {
	if sess.cancelFn != nil {
		return
	}

	ch, cancel := s.scores.Totals().Subscribe()
	sess.cancelFn = cancel

	go func() {
		for update := range ch {
			if update.PoolID != sess.poolID || update.UserID != sess.userID {
				continue
			}
			sess.mu.Lock()
			sess.total = update.Total
			sess.mu.Unlock()
		}
	}()
}

// viewLocked assembles the view. Caller holds sess.mu.
func (s *SessionService) viewLocked(sess *session) SessionView {
	rows := make([]SessionMatch, 0, len(sess.matches))
	for _, fixture := range sess.matches {
		row := SessionMatch{Match: fixture}
		if item, ok := sess.stored[fixture.ID]; ok {
			row.Prediction = item
			row.HasPrediction = true
		}
		rows = append(rows, row)
	}

	return SessionView{
		State:   sess.state,
		PoolID:  sess.poolID,
		UserID:  sess.userID,
		Matches: rows,
		Total:   sess.total,
	}
}
