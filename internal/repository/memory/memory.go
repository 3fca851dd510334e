// Package memory provides in-process repositories for tests and for running
// the server without a database. Every write is atomic per record.
package memory

import (
	"github.com/dom/civ-draft/internal/repository"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Lobby:       NewLobbyRepository(),
		Selection:   NewSelectionRepository(),
		Chat:        NewChatRepository(),
		DraftAction: NewDraftActionRepository(),
		Catalog:     NewCatalogRepository(),
		Preset:      NewPresetRepository(),
	}
}
