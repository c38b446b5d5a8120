package repos

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"productapi/internal/domain"
)

// MemoryProductRepo keeps products in process memory. Listing follows insertion order.
type MemoryProductRepo struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*domain.Product
	order []uuid.UUID
}

var _ ProductRepository = (*MemoryProductRepo)(nil)

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{byID: make(map[uuid.UUID]*domain.Product)}
}

func (r *MemoryProductRepo) Add(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID()]; ok {
		return fmt.Errorf("insert product %s: %w", p.ID(), domain.ErrDuplicateID)
	}
	r.byID[p.ID()] = p.Clone()
	r.order = append(r.order, p.ID())
	return nil
}

func (r *MemoryProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (r *MemoryProductRepo) GetAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *MemoryProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID()]; !ok {
		r.order = append(r.order, p.ID())
	}
	r.byID[p.ID()] = p.Clone()
	return nil
}

func (r *MemoryProductRepo) Update(_ context.Context, id uuid.UUID, fn func(*domain.Product) error) (*domain.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return nil, false, nil
	}
	p := cur.Clone()
	if err := fn(p); err != nil {
		return nil, true, err
	}
	r.byID[id] = p.Clone()
	return p, true, nil
}

func (r *MemoryProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryProductRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok, nil
}
