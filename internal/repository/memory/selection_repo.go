package memory

import (
	"context"
	"sync"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
)

type SelectionRepository struct {
	mu         sync.RWMutex
	selections map[uuid.UUID]domain.CurrentSelection
}

func NewSelectionRepository() *SelectionRepository {
	return &SelectionRepository{selections: make(map[uuid.UUID]domain.CurrentSelection)}
}

func (r *SelectionRepository) Set(ctx context.Context, selection *domain.CurrentSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[selection.LobbyID] = *selection
	return nil
}

func (r *SelectionRepository) Clear(ctx context.Context, lobbyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selections, lobbyID)
	return nil
}

func (r *SelectionRepository) Get(ctx context.Context, lobbyID uuid.UUID) (*domain.CurrentSelection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	selection, ok := r.selections[lobbyID]
	if !ok {
		return nil, nil
	}
	return &selection, nil
}
