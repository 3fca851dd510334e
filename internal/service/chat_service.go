package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LobbyReader looks lobbies up without being able to change them.
type LobbyReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error)
}

type ChatService struct {
	chatRepo     repository.ChatRepository
	lobbies      LobbyReader
	events       pubsub.Publisher
	defaultLimit int
	log          *zap.Logger
}

func NewChatService(chatRepo repository.ChatRepository, lobbies LobbyReader, events pubsub.Publisher, defaultLimit int) *ChatService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultChatLimit
	}
	return &ChatService{
		chatRepo:     chatRepo,
		lobbies:      lobbies,
		events:       events,
		defaultLimit: defaultLimit,
		log:          logger.Named("chat"),
	}
}

func (s *ChatService) Post(ctx context.Context, lobbyID uuid.UUID, pseudo, text string) (*domain.ChatMessage, error) {
	pseudo = strings.TrimSpace(pseudo)
	text = strings.TrimSpace(text)
	if pseudo == "" || text == "" || utf8.RuneCountInString(text) > domain.MaxChatMessageLength {
		return nil, domain.ErrInvalidMessage
	}

	if _, err := s.lobbies.GetByID(ctx, lobbyID); err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:        uuid.New(),
		LobbyID:   lobbyID,
		Pseudo:    pseudo,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	publish(s.events, s.log, pubsub.EventChatPosted, lobbyID.String(), msg)
	return msg, nil
}

// List returns the newest messages oldest first. A non-positive limit uses
// the configured default; limits above MaxChatLimit are capped.
func (s *ChatService) List(ctx context.Context, lobbyID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, domain.MaxChatLimit)
	return s.chatRepo.ListRecent(ctx, lobbyID, limit)
}
