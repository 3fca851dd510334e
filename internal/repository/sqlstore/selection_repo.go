package sqlstore

import (
	"context"
	"errors"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type selectionRepository struct {
	db *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) *selectionRepository {
	return &selectionRepository{db: db}
}

func (r *selectionRepository) Set(ctx context.Context, selection *domain.CurrentSelection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lobby_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selection_id", "updated_at"}),
	}).Create(selection).Error
}

func (r *selectionRepository) Clear(ctx context.Context, lobbyID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.CurrentSelection{}, "lobby_id = ?", lobbyID).Error
}

func (r *selectionRepository) Get(ctx context.Context, lobbyID uuid.UUID) (*domain.CurrentSelection, error) {
	var selection domain.CurrentSelection
	err := r.db.WithContext(ctx).First(&selection, "lobby_id = ?", lobbyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &selection, nil
}
