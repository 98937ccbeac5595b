package subscription

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*Plan
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{plans: make(map[uuid.UUID]*Plan)}
}

func (r *MemoryRepository) Create(ctx context.Context, p *Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans[p.ID] = p.clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[p.ID]; !ok {
		return ErrPlanNotFound
	}
	r.plans[p.ID] = p.clone()
	return nil
}

func (r *MemoryRepository) ListActive(ctx context.Context) ([]Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price.Equal(out[j].Price) {
			return out[i].Name < out[j].Name
		}
		return out[i].Price.LessThan(out[j].Price)
	})
	return out, nil
}
