package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/domain/user"
)

func intPtr(v int) *int {
	return &v
}

type stubPoolRepository struct {
	mu   sync.Mutex
	byID map[string]pool.Pool
}

func newStubPoolRepository(pools ...pool.Pool) *stubPoolRepository {
	repo := &stubPoolRepository{byID: make(map[string]pool.Pool)}
	for _, p := range pools {
		repo.byID[p.ID] = p
	}
	return repo
}

func (s *stubPoolRepository) GetByID(_ context.Context, id string) (pool.Pool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	return item, ok, nil
}

func (s *stubPoolRepository) GetByInviteCode(_ context.Context, code string) (pool.Pool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.byID {
		if item.InviteCode == code {
			return item, true, nil
		}
	}
	return pool.Pool{}, false, nil
}

func (s *stubPoolRepository) ListByParticipant(_ context.Context, userID string) ([]pool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []pool.Pool
	for _, item := range s.byID {
		if item.HasParticipant(userID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubPoolRepository) ListAll(_ context.Context) ([]pool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pool.Pool, 0, len(s.byID))
	for _, item := range s.byID {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubPoolRepository) Create(_ context.Context, p pool.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = p
	return nil
}

func (s *stubPoolRepository) AddParticipant(_ context.Context, poolID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[poolID]
	if !ok {
		return fmt.Errorf("pool %s not found", poolID)
	}
	if !item.HasParticipant(userID) {
		item.Participants = append(item.Participants, userID)
		s.byID[poolID] = item
	}
	return nil
}

type stubPredictionRepository struct {
	mu        sync.Mutex
	rows      map[prediction.Key]prediction.Prediction
	nextID    int
	upserts   int
	deletes   int
	upsertErr error
}

func newStubPredictionRepository(rows ...prediction.Prediction) *stubPredictionRepository {
	repo := &stubPredictionRepository{rows: make(map[prediction.Key]prediction.Prediction)}
	for _, item := range rows {
		if item.ID == "" {
			repo.nextID++
			item.ID = "pred-" + strconv.Itoa(repo.nextID)
		}
		repo.rows[item.Key()] = item
	}
	return repo
}

func (s *stubPredictionRepository) GetByKey(_ context.Context, key prediction.Key) (prediction.Prediction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.rows[key]
	return item, ok, nil
}

func (s *stubPredictionRepository) ListByUser(_ context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []prediction.Prediction
	for _, item := range s.rows {
		if item.UserID == userID && item.PoolID == poolID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubPredictionRepository) ListByPool(_ context.Context, poolID string) ([]prediction.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []prediction.Prediction
	for _, item := range s.rows {
		if item.PoolID == poolID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubPredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return prediction.Prediction{}, s.upsertErr
	}
	s.upserts++
	if existing, ok := s.rows[p.Key()]; ok {
		p.ID = existing.ID
	} else if p.ID == "" {
		s.nextID++
		p.ID = "pred-" + strconv.Itoa(s.nextID)
	}
	s.rows[p.Key()] = p
	return p, nil
}

func (s *stubPredictionRepository) Delete(_ context.Context, key prediction.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.rows, key)
	return nil
}

type stubScoreRepository struct {
	mu      sync.Mutex
	rows    map[string]score.Score
	nextID  int
	upserts int
}

func newStubScoreRepository(rows ...score.Score) *stubScoreRepository {
	repo := &stubScoreRepository{rows: make(map[string]score.Score)}
	for _, item := range rows {
		if item.ID == "" {
			repo.nextID++
			item.ID = "score-" + strconv.Itoa(repo.nextID)
		}
		repo.rows[item.PoolID+"::"+item.UserID] = item
	}
	return repo
}

func (s *stubScoreRepository) GetByPoolAndUser(_ context.Context, poolID, userID string) (score.Score, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.rows[poolID+"::"+userID]
	return item, ok, nil
}

func (s *stubScoreRepository) ListByPool(_ context.Context, poolID string) ([]score.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []score.Score
	for _, item := range s.rows {
		if item.PoolID == poolID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubScoreRepository) Upsert(_ context.Context, item score.Score) (score.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	key := item.PoolID + "::" + item.UserID
	if existing, ok := s.rows[key]; ok {
		item.ID = existing.ID
	} else if item.ID == "" {
		s.nextID++
		item.ID = "score-" + strconv.Itoa(s.nextID)
	}
	s.rows[key] = item
	return item, nil
}

type stubMatchFeed struct {
	mu      sync.Mutex
	matches map[string][]match.Match
	leagues []Tournament
	err     error
	calls   int
}

func feedKey(shortcut, season string) string {
	return shortcut + "::" + season
}

func (s *stubMatchFeed) MatchesByLeagueSeason(_ context.Context, shortcut, season string) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	items := s.matches[feedKey(shortcut, season)]
	out := make([]match.Match, len(items))
	copy(out, items)
	return out, nil
}

func (s *stubMatchFeed) AvailableLeagues(_ context.Context) ([]Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Tournament, len(s.leagues))
	copy(out, s.leagues)
	return out, nil
}

type stubIdentityProvider struct {
	users map[string]user.User
}

func (s *stubIdentityProvider) GetUserByID(_ context.Context, userID string) (user.User, bool) {
	item, ok := s.users[userID]
	return item, ok
}

type publishedJob struct {
	path    string
	payload any
	dedupID string
}

type stubJobPublisher struct {
	mu   sync.Mutex
	jobs []publishedJob
	err  error
}

func (s *stubJobPublisher) Publish(_ context.Context, path string, payload any, dedupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, publishedJob{path: path, payload: payload, dedupID: dedupID})
	return nil
}

type stubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (s *stubIDGenerator) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "id-" + strconv.Itoa(s.next), nil
}

func finishedMatch(id int64, home, away int) match.Match {
	return match.Match{
		ID:         id,
		IsFinished: true,
		Results: []match.Result{
			{ResultID: id * 10, Name: "Halftime", TypeID: 1, HomeGoals: 0, AwayGoals: 0},
			{ResultID: id*10 + 1, Name: "Final", TypeID: match.ResultTypeFinal, HomeGoals: home, AwayGoals: away},
		},
	}
}
