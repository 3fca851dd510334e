package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
)

type PresetRepository struct {
	mu      sync.RWMutex
	presets map[uuid.UUID]domain.Preset
}

func NewPresetRepository() *PresetRepository {
	return &PresetRepository{presets: make(map[uuid.UUID]domain.Preset)}
}

func (r *PresetRepository) Create(ctx context.Context, preset *domain.Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.presets {
		if p.Name == preset.Name {
			return domain.ErrPresetNameTaken
		}
	}
	now := time.Now()
	preset.CreatedAt = now
	preset.UpdatedAt = now
	r.presets[preset.ID] = clonePreset(preset)
	return nil
}

func (r *PresetRepository) Update(ctx context.Context, preset *domain.Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.presets[preset.ID]
	if !ok {
		return domain.ErrPresetNotFound
	}
	preset.CreatedAt = stored.CreatedAt
	preset.UpdatedAt = time.Now()
	r.presets[preset.ID] = clonePreset(preset)
	return nil
}

func (r *PresetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presets[id]; !ok {
		return domain.ErrPresetNotFound
	}
	delete(r.presets, id)
	return nil
}

func (r *PresetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.presets[id]
	if !ok {
		return nil, domain.ErrPresetNotFound
	}
	out := clonePreset(&p)
	return &out, nil
}

func (r *PresetRepository) GetByName(ctx context.Context, name string) (*domain.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.presets {
		if p.Name == name {
			out := clonePreset(&p)
			return &out, nil
		}
	}
	return nil, domain.ErrPresetNotFound
}

func (r *PresetRepository) List(ctx context.Context) ([]*domain.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Preset, 0, len(r.presets))
	for _, p := range r.presets {
		c := clonePreset(&p)
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Preset) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func clonePreset(p *domain.Preset) domain.Preset {
	c := *p
	c.MapIDs = slices.Clone(p.MapIDs)
	c.AutoBannedLeaderIDs = slices.Clone(p.AutoBannedLeaderIDs)
	return c
}
