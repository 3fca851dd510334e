package sqlstore

import (
	"context"
	"errors"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type presetRepository struct {
	db *gorm.DB
}

func NewPresetRepository(db *gorm.DB) *presetRepository {
	return &presetRepository{db: db}
}

func (r *presetRepository) Create(ctx context.Context, preset *domain.Preset) error {
	return r.db.WithContext(ctx).Create(preset).Error
}

func (r *presetRepository) Update(ctx context.Context, preset *domain.Preset) error {
	result := r.db.WithContext(ctx).Model(&domain.Preset{}).
		Where("id = ?", preset.ID).
		Updates(map[string]interface{}{
			"name":                            preset.Name,
			"label":                           preset.Label,
			"map_ids":                         preset.MapIDs,
			"auto_banned_leader_ids":          preset.AutoBannedLeaderIDs,
			"number_of_bans_first_rotation":   preset.BansFirst,
			"number_of_bans_second_rotation":  preset.BansSecond,
			"number_of_picks_first_rotation":  preset.PicksFirst,
			"number_of_picks_second_rotation": preset.PicksSecond,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPresetNotFound
	}
	return nil
}

func (r *presetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Preset{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPresetNotFound
	}
	return nil
}

func (r *presetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error) {
	var preset domain.Preset
	if err := r.db.WithContext(ctx).First(&preset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPresetNotFound
		}
		return nil, err
	}
	return &preset, nil
}

func (r *presetRepository) GetByName(ctx context.Context, name string) (*domain.Preset, error) {
	var preset domain.Preset
	if err := r.db.WithContext(ctx).First(&preset, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPresetNotFound
		}
		return nil, err
	}
	return &preset, nil
}

func (r *presetRepository) List(ctx context.Context) ([]*domain.Preset, error) {
	var presets []*domain.Preset
	err := r.db.WithContext(ctx).Order("name ASC").Find(&presets).Error
	return presets, err
}
