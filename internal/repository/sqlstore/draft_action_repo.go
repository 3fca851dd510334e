package sqlstore

import (
	"context"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type draftActionRepository struct {
	db *gorm.DB
}

func NewDraftActionRepository(db *gorm.DB) *draftActionRepository {
	return &draftActionRepository{db: db}
}

func (r *draftActionRepository) Create(ctx context.Context, action *domain.DraftAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *draftActionRepository) GetByLobbyID(ctx context.Context, lobbyID uuid.UUID) ([]*domain.DraftAction, error) {
	var actions []*domain.DraftAction
	err := r.db.WithContext(ctx).
		Where("lobby_id = ?", lobbyID).
		Order("acted_at ASC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}
