package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/lapollita/polla-api/internal/domain/prediction"
)

type PredictionRepository struct {
	mu     sync.RWMutex
	items  map[prediction.Key]prediction.Prediction
	nextID int
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[prediction.Key]prediction.Prediction)}
}

func (r *PredictionRepository) GetByKey(_ context.Context, key prediction.Key) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[key]
	if !ok {
		return prediction.Prediction{}, false, nil
	}

	return clonePrediction(item), true, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, item := range r.items {
		if item.UserID == userID && item.PoolID == poolID {
			out = append(out, clonePrediction(item))
		}
	}

	return out, nil
}

func (r *PredictionRepository) ListByPool(_ context.Context, poolID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, item := range r.items {
		if item.PoolID == poolID {
			out = append(out, clonePrediction(item))
		}
	}

	return out, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[p.Key()]; ok {
		p.ID = existing.ID
	} else if p.ID == "" {
		r.nextID++
		p.ID = "mem-pred-" + strconv.Itoa(r.nextID)
	}

	r.items[p.Key()] = clonePrediction(p)
	return clonePrediction(p), nil
}

func (r *PredictionRepository) Delete(_ context.Context, key prediction.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, key)
	return nil
}

func clonePrediction(p prediction.Prediction) prediction.Prediction {
	copied := p
	if p.Home != nil {
		home := *p.Home
		copied.Home = &home
	}
	if p.Away != nil {
		away := *p.Away
		copied.Away = &away
	}
	return copied
}
