package service

import (
	"context"
	"strings"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectionService is the hover channel. It is last-write-wins and performs
// no legality checks. It reads the lobby record only to check that it exists.
type SelectionService struct {
	selectionRepo repository.SelectionRepository
	lobbies       repository.DraftStore
	events        pubsub.Publisher
	clock         Clock
	log           *zap.Logger
}

func NewSelectionService(selectionRepo repository.SelectionRepository, lobbies repository.DraftStore, events pubsub.Publisher, clock Clock) *SelectionService {
	if clock == nil {
		clock = SystemClock()
	}
	return &SelectionService{
		selectionRepo: selectionRepo,
		lobbies:       lobbies,
		events:        events,
		clock:         clock,
		log:           logger.Named("selection"),
	}
}

// Set hovers selectionID. A blank id clears the selection.
func (s *SelectionService) Set(ctx context.Context, lobbyID uuid.UUID, selectionID string) (*domain.CurrentSelection, error) {
	selectionID = strings.TrimSpace(selectionID)
	if selectionID == "" {
		return nil, s.Clear(ctx, lobbyID)
	}
	if _, err := s.lobbies.GetByID(ctx, lobbyID); err != nil {
		return nil, err
	}

	selection := &domain.CurrentSelection{
		LobbyID:     lobbyID,
		SelectionID: selectionID,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.selectionRepo.Set(ctx, selection); err != nil {
		return nil, err
	}

	publish(s.events, s.log, pubsub.EventSelectionUpdated, lobbyID.String(), selection)
	return selection, nil
}

func (s *SelectionService) Clear(ctx context.Context, lobbyID uuid.UUID) error {
	if _, err := s.lobbies.GetByID(ctx, lobbyID); err != nil {
		return err
	}
	if err := s.selectionRepo.Clear(ctx, lobbyID); err != nil {
		return err
	}
	publish(s.events, s.log, pubsub.EventSelectionUpdated, lobbyID.String(), &domain.CurrentSelection{LobbyID: lobbyID})
	return nil
}

// Get returns nil when nothing is selected.
func (s *SelectionService) Get(ctx context.Context, lobbyID uuid.UUID) (*domain.CurrentSelection, error) {
	return s.selectionRepo.Get(ctx, lobbyID)
}
