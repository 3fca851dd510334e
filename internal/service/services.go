package service

import (
	"github.com/dom/civ-draft/internal/config"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
)

type Services struct {
	Lobby      *LobbyService
	Membership *MembershipService
	Draft      *DraftService
	Selection  *SelectionService
	Chat       *ChatService
	Catalog    *CatalogService
	Preset     *PresetService
}

// NewServices wires every service. recorder may be nil; clock and scheduler
// default to the wall clock and runtime timers.
func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	events pubsub.Publisher,
	recorder ActionRecorder,
	clock Clock,
	scheduler Scheduler,
) *Services {
	draft := NewDraftService(DraftDeps{
		Lobbies:   repos.Lobby,
		Catalog:   repos.Catalog,
		Actions:   repos.DraftAction,
		Selection: repos.Selection,
		Recorder:  recorder,
		Events:    events,
		Clock:     clock,
		Scheduler: scheduler,
	}, DraftSettings{
		Timeout:         cfg.DraftTimeout,
		DefaultMapID:    cfg.DefaultAutoBanMapID,
		DefaultLeaderID: cfg.DefaultAutoBanLeaderID,
	})

	return &Services{
		Lobby:      NewLobbyService(repos.Lobby, repos.Catalog, repos.Preset, draft),
		Membership: NewMembershipService(repos.Lobby, events),
		Draft:      draft,
		Selection:  NewSelectionService(repos.Selection, repos.Lobby, events, clock),
		Chat:       NewChatService(repos.Chat, repos.Lobby, events, cfg.ChatHistoryLimit),
		Catalog:    NewCatalogService(repos.Catalog, cfg.CatalogURL),
		Preset:     NewPresetService(repos.Preset, repos.Catalog),
	}
}
