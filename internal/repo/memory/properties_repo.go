package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proprio/propertyhub/internal/domain/property"
)

type PropertiesRepo struct {
	mu    sync.RWMutex
	items map[string]property.Property
}

func NewPropertiesRepo() *PropertiesRepo {
	return &PropertiesRepo{
		items: make(map[string]property.Property),
	}
}

func (r *PropertiesRepo) Create(ctx context.Context, req property.CreatePropertyRequest, creatorID string) (property.Property, error) {
	p := property.FromCreateRequest(req)

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Users = []string{creatorID}
	p.CreatedAt = now
	p.UpdatedAt = now

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

func (r *PropertiesRepo) GetByID(ctx context.Context, id string) (property.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]

	if !ok {
		return property.Property{}, property.ErrNotFound
	}

	return p, nil
}

func (r *PropertiesRepo) List(ctx context.Context) ([]property.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]property.Property, 0, len(r.items))

	for _, p := range r.items {
		out = append(out, p)
	}

	return out, nil
}

func (r *PropertiesRepo) Update(ctx context.Context, id string, req property.UpdatePropertyRequest) (property.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok {
		return property.Property{}, property.ErrNotFound
	}

	p.ApplyUpdate(req)
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p

	return p, nil
}

func (r *PropertiesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return property.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
