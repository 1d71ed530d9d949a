package memory

import (
	"context"
	"sync"

	"github.com/lapollita/polla-api/internal/domain/pool"
)

type PoolRepository struct {
	mu    sync.RWMutex
	items map[string]pool.Pool
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{items: make(map[string]pool.Pool)}
}

func (r *PoolRepository) GetByID(_ context.Context, id string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return pool.Pool{}, false, nil
	}

	return clonePool(item), true, nil
}

func (r *PoolRepository) GetByInviteCode(_ context.Context, code string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.InviteCode == code {
			return clonePool(item), true, nil
		}
	}

	return pool.Pool{}, false, nil
}

func (r *PoolRepository) ListByParticipant(_ context.Context, userID string) ([]pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []pool.Pool
	for _, item := range r.items {
		if item.HasParticipant(userID) {
			out = append(out, clonePool(item))
		}
	}

	return out, nil
}

func (r *PoolRepository) ListAll(_ context.Context) ([]pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Pool, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, clonePool(item))
	}

	return out, nil
}

func (r *PoolRepository) Create(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = clonePool(p)
	return nil
}

func (r *PoolRepository) AddParticipant(_ context.Context, poolID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[poolID]
	if !ok {
		return nil
	}
	if item.HasParticipant(userID) {
		return nil
	}

	item.Participants = append(item.Participants, userID)
	r.items[poolID] = item
	return nil
}

func clonePool(p pool.Pool) pool.Pool {
	copied := p
	copied.Participants = append([]string(nil), p.Participants...)
	return copied
}
