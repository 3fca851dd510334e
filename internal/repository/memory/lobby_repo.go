package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
)

type LobbyRepository struct {
	mu      sync.RWMutex
	lobbies map[uuid.UUID]*domain.Lobby
}

func NewLobbyRepository() *LobbyRepository {
	return &LobbyRepository{lobbies: make(map[uuid.UUID]*domain.Lobby)}
}

func (r *LobbyRepository) Create(ctx context.Context, lobby *domain.Lobby) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lobbies[lobby.ID]; exists {
		return fmt.Errorf("lobby %s already exists", lobby.ID)
	}
	now := time.Now()
	lobby.CreatedAt = now
	lobby.UpdatedAt = now
	r.lobbies[lobby.ID] = lobby.Clone()
	return nil
}

func (r *LobbyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lobby, ok := r.lobbies[id]
	if !ok {
		return nil, domain.ErrLobbyNotFound
	}
	return lobby.Clone(), nil
}

func (r *LobbyRepository) UpdateDraft(ctx context.Context, lobby *domain.Lobby) error {
	return r.versionedUpdate(lobby, func(stored, in *domain.Lobby) {
		stored.Status = in.Status
		stored.Team1.SelectedLeaders = in.Team1.SelectedLeaders
		stored.Team1.BannedLeaders = in.Team1.BannedLeaders
		stored.Team1.BannedMaps = in.Team1.BannedMaps
		stored.Team2.SelectedLeaders = in.Team2.SelectedLeaders
		stored.Team2.BannedLeaders = in.Team2.BannedLeaders
		stored.Team2.BannedMaps = in.Team2.BannedMaps
		stored.BannedMapIDs = in.BannedMapIDs
		stored.SelectedMapID = in.SelectedMapID
		stored.DraftStatus = in.DraftStatus
		stored.CurrentTeamTurn = in.CurrentTeamTurn
		stored.MapBanTimestamp = in.MapBanTimestamp
		stored.LeaderBanTimestamp = in.LeaderBanTimestamp
	})
}

func (r *LobbyRepository) UpdateMembership(ctx context.Context, lobby *domain.Lobby) error {
	return r.versionedUpdate(lobby, func(stored, in *domain.Lobby) {
		stored.Team1.Name = in.Team1.Name
		stored.Team1.Players = in.Team1.Players
		stored.Team1.IsReady = in.Team1.IsReady
		stored.Team2.Name = in.Team2.Name
		stored.Team2.Players = in.Team2.Players
		stored.Team2.IsReady = in.Team2.IsReady
		stored.Observers = in.Observers
	})
}

// versionedUpdate copies the selected fields of a private copy of lobby into
// the stored record if the stored version still matches.
func (r *LobbyRepository) versionedUpdate(lobby *domain.Lobby, copyFields func(stored, in *domain.Lobby)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.lobbies[lobby.ID]
	if !ok {
		return domain.ErrLobbyNotFound
	}
	if stored.Version != lobby.Version {
		return repository.ErrConflict
	}

	next := stored.Clone()
	copyFields(next, lobby.Clone())
	next.Version++
	next.UpdatedAt = time.Now()
	r.lobbies[lobby.ID] = next

	lobby.Version = next.Version
	lobby.UpdatedAt = next.UpdatedAt
	return nil
}
