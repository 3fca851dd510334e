package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
	"github.com/google/uuid"
)

type LobbyHandler struct {
	lobbyService *service.LobbyService
	draftService *service.DraftService
}

func NewLobbyHandler(lobbyService *service.LobbyService, draftService *service.DraftService) *LobbyHandler {
	return &LobbyHandler{
		lobbyService: lobbyService,
		draftService: draftService,
	}
}

type CreateLobbyRequest struct {
	Team1Name           string            `json:"team1Name"`
	Team2Name           string            `json:"team2Name"`
	Rotations           *domain.Rotations `json:"rotations"`
	MapIDs              []string          `json:"mapIds"`
	AutoBannedLeaderIDs []string          `json:"autoBannedLeaderIds"`
	WithMapDraft        bool              `json:"withMapDraft"`
	PresetID            *uuid.UUID        `json:"presetId"`
}

func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLobbyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lobby, err := h.lobbyService.CreateLobby(r.Context(), service.CreateLobbyInput{
		Team1Name:           req.Team1Name,
		Team2Name:           req.Team2Name,
		Rotations:           req.Rotations,
		MapIDs:              req.MapIDs,
		AutoBannedLeaderIDs: req.AutoBannedLeaderIDs,
		WithMapDraft:        req.WithMapDraft,
		PresetID:            req.PresetID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, lobby)
}

func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	view, err := h.lobbyService.GetLobby(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type HistoryResponse struct {
	Actions []*domain.DraftAction `json:"actions"`
}

func (h *LobbyHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	actions, err := h.draftService.GetHistory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if actions == nil {
		actions = []*domain.DraftAction{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Actions: actions})
}
