package repository

import (
	"context"
	"errors"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/google/uuid"
)

// ErrConflict is returned by versioned writes when the row changed since it
// was read. Callers re-read and retry.
var ErrConflict = errors.New("concurrent update conflict")

// DraftStore is the only write path to the draft-owned lobby fields: status,
// draft pointer, ban and pick lists, selected map and phase timestamps.
type DraftStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error)
	// UpdateDraft writes the draft fields of lobby if its stored version still
	// equals lobby.Version, then bumps lobby.Version.
	UpdateDraft(ctx context.Context, lobby *domain.Lobby) error
}

// MembershipStore writes rosters, team names and ready flags. It cannot reach
// any draft field.
type MembershipStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error)
	UpdateMembership(ctx context.Context, lobby *domain.Lobby) error
}

type LobbyRepository interface {
	Create(ctx context.Context, lobby *domain.Lobby) error
	DraftStore
	MembershipStore
}

type SelectionRepository interface {
	Set(ctx context.Context, selection *domain.CurrentSelection) error
	Clear(ctx context.Context, lobbyID uuid.UUID) error
	// Get returns nil without error when nothing is selected.
	Get(ctx context.Context, lobbyID uuid.UUID) (*domain.CurrentSelection, error)
}

type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// ListRecent returns the newest limit messages, oldest first.
	ListRecent(ctx context.Context, lobbyID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

type DraftActionRepository interface {
	Create(ctx context.Context, action *domain.DraftAction) error
	GetByLobbyID(ctx context.Context, lobbyID uuid.UUID) ([]*domain.DraftAction, error)
}

type CatalogRepository interface {
	UpsertLeaders(ctx context.Context, leaders []*domain.Leader) error
	UpsertMaps(ctx context.Context, maps []*domain.Map) error
	GetLeaders(ctx context.Context) ([]*domain.Leader, error)
	GetMaps(ctx context.Context) ([]*domain.Map, error)
	GetLeader(ctx context.Context, id string) (*domain.Leader, error)
	GetMap(ctx context.Context, id string) (*domain.Map, error)
}

type PresetRepository interface {
	Create(ctx context.Context, preset *domain.Preset) error
	Update(ctx context.Context, preset *domain.Preset) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error)
	GetByName(ctx context.Context, name string) (*domain.Preset, error)
	List(ctx context.Context) ([]*domain.Preset, error)
}

type Repositories struct {
	Lobby       LobbyRepository
	Selection   SelectionRepository
	Chat        ChatRepository
	DraftAction DraftActionRepository
	Catalog     CatalogRepository
	Preset      PresetRepository
}
