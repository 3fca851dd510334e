package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dom/civ-draft/internal/domain"
)

type CatalogRepository struct {
	mu      sync.RWMutex
	leaders map[string]domain.Leader
	maps    map[string]domain.Map
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		leaders: make(map[string]domain.Leader),
		maps:    make(map[string]domain.Map),
	}
}

func (r *CatalogRepository) UpsertLeaders(ctx context.Context, leaders []*domain.Leader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range leaders {
		r.leaders[l.ID] = *l
	}
	return nil
}

func (r *CatalogRepository) UpsertMaps(ctx context.Context, maps []*domain.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range maps {
		r.maps[m.ID] = *m
	}
	return nil
}

func (r *CatalogRepository) GetLeaders(ctx context.Context) ([]*domain.Leader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Leader, 0, len(r.leaders))
	for _, l := range r.leaders {
		leader := l
		out = append(out, &leader)
	}
	slices.SortFunc(out, func(a, b *domain.Leader) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *CatalogRepository) GetMaps(ctx context.Context) ([]*domain.Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Map, 0, len(r.maps))
	for _, m := range r.maps {
		mp := m
		out = append(out, &mp)
	}
	slices.SortFunc(out, func(a, b *domain.Map) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *CatalogRepository) GetLeader(ctx context.Context, id string) (*domain.Leader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leaders[id]
	if !ok {
		return nil, domain.ErrLeaderNotFound
	}
	return &l, nil
}

func (r *CatalogRepository) GetMap(ctx context.Context, id string) (*domain.Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[id]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	return &m, nil
}
