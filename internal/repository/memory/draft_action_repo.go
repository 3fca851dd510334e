package memory

import (
	"context"
	"sync"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
)

type DraftActionRepository struct {
	mu      sync.RWMutex
	actions map[uuid.UUID][]domain.DraftAction
}

func NewDraftActionRepository() *DraftActionRepository {
	return &DraftActionRepository{actions: make(map[uuid.UUID][]domain.DraftAction)}
}

func (r *DraftActionRepository) Create(ctx context.Context, action *domain.DraftAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.LobbyID] = append(r.actions[action.LobbyID], *action)
	return nil
}

func (r *DraftActionRepository) GetByLobbyID(ctx context.Context, lobbyID uuid.UUID) ([]*domain.DraftAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.actions[lobbyID]
	out := make([]*domain.DraftAction, len(stored))
	for i := range stored {
		action := stored[i]
		out[i] = &action
	}
	return out, nil
}
