package memory

import (
	"context"
	"sync"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
)

type ChatRepository struct {
	mu       sync.RWMutex
	messages map[uuid.UUID][]domain.ChatMessage
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{messages: make(map[uuid.UUID][]domain.ChatMessage)}
}

func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.LobbyID] = append(r.messages[msg.LobbyID], *msg)
	return nil
}

func (r *ChatRepository) ListRecent(ctx context.Context, lobbyID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.messages[lobbyID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}
	out := make([]*domain.ChatMessage, 0, len(all)-start)
	for i := start; i < len(all); i++ {
		msg := all[i]
		out = append(out, &msg)
	}
	return out, nil
}
