package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/lapollita/polla-api/internal/domain/score"
)

type ScoreRepository struct {
	mu     sync.RWMutex
	items  map[string]score.Score
	nextID int
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{items: make(map[string]score.Score)}
}

func (r *ScoreRepository) GetByPoolAndUser(_ context.Context, poolID, userID string) (score.Score, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[scoreKey(poolID, userID)]
	return item, ok, nil
}

func (r *ScoreRepository) ListByPool(_ context.Context, poolID string) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []score.Score
	for _, item := range r.items {
		if item.PoolID == poolID {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *ScoreRepository) Upsert(_ context.Context, s score.Score) (score.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scoreKey(s.PoolID, s.UserID)
	if existing, ok := r.items[key]; ok {
		s.ID = existing.ID
	} else if s.ID == "" {
		r.nextID++
		s.ID = "mem-score-" + strconv.Itoa(r.nextID)
	}

	r.items[key] = s
	return s, nil
}

func scoreKey(poolID, userID string) string {
	return poolID + "::" + userID
}
