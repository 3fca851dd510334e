package api

import (
	"net/http"

	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/api/middleware"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/service"
	"github.com/dom/civ-draft/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface. stats may be nil when analytics is
// disabled.
func NewRouter(services *service.Services, hub *websocket.Hub, stats handlers.LeaderStatsSource) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	lobbyHandler := handlers.NewLobbyHandler(services.Lobby, services.Draft)
	draftHandler := handlers.NewDraftHandler(services.Draft)
	membershipHandler := handlers.NewMembershipHandler(services.Membership)
	selectionHandler := handlers.NewSelectionHandler(services.Selection)
	chatHandler := handlers.NewChatHandler(services.Chat)
	catalogHandler := handlers.NewCatalogHandler(services.Catalog)
	presetHandler := handlers.NewPresetHandler(services.Preset)
	statsHandler := handlers.NewStatsHandler(stats)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/lobbies", func(r chi.Router) {
			r.Post("/", lobbyHandler.Create)
			r.Get("/{id}", lobbyHandler.Get)
			r.Get("/{id}/history", lobbyHandler.History)

			// Draft engine
			r.Post("/{id}/start", draftHandler.Start)
			r.Post("/{id}/maps/ban", draftHandler.BanMap)
			r.Post("/{id}/leaders/ban-or-pick", draftHandler.BanOrPickLeader)

			// Membership
			r.Post("/{id}/teams/{team}/join", membershipHandler.JoinTeam)
			r.Post("/{id}/observers/join", membershipHandler.JoinObservers)
			r.Post("/{id}/players/rename", membershipHandler.Rename)
			r.Post("/{id}/players/ready", membershipHandler.ToggleReady)

			// Hover channel
			r.Get("/{id}/selection", selectionHandler.Get)
			r.Put("/{id}/selection", selectionHandler.Set)
			r.Delete("/{id}/selection", selectionHandler.Clear)

			r.Get("/{id}/chat", chatHandler.List)
			r.Post("/{id}/chat", chatHandler.Post)
		})

		// Catalog
		r.Get("/leaders", catalogHandler.Leaders)
		r.Get("/maps", catalogHandler.Maps)
		r.Post("/catalog/sync", catalogHandler.Sync)

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", presetHandler.List)
			r.Post("/", presetHandler.Create)
			r.Get("/{id}", presetHandler.Get)
			r.Put("/{id}", presetHandler.Update)
			r.Delete("/{id}", presetHandler.Delete)
		})

		r.Get("/stats/leaders", statsHandler.Leaders)

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
