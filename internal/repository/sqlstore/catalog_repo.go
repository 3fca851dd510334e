package sqlstore

import (
	"context"
	"errors"

	"github.com/dom/civ-draft/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) UpsertLeaders(ctx context.Context, leaders []*domain.Leader) error {
	if len(leaders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(leaders).Error
}

func (r *catalogRepository) UpsertMaps(ctx context.Context, maps []*domain.Map) error {
	if len(maps) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(maps).Error
}

func (r *catalogRepository) GetLeaders(ctx context.Context) ([]*domain.Leader, error) {
	var leaders []*domain.Leader
	err := r.db.WithContext(ctx).Order("name ASC").Find(&leaders).Error
	if err != nil {
		return nil, err
	}
	return leaders, nil
}

func (r *catalogRepository) GetMaps(ctx context.Context) ([]*domain.Map, error) {
	var maps []*domain.Map
	err := r.db.WithContext(ctx).Order("name ASC").Find(&maps).Error
	if err != nil {
		return nil, err
	}
	return maps, nil
}

func (r *catalogRepository) GetLeader(ctx context.Context, id string) (*domain.Leader, error) {
	var leader domain.Leader
	err := r.db.WithContext(ctx).First(&leader, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLeaderNotFound
		}
		return nil, err
	}
	return &leader, nil
}

func (r *catalogRepository) GetMap(ctx context.Context, id string) (*domain.Map, error) {
	var m domain.Map
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMapNotFound
		}
		return nil, err
	}
	return &m, nil
}
