package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
)

// DraftHandler exposes the draft engine. Requests that lost a race or name
// the wrong team answer 200 with "applied": false.
type DraftHandler struct {
	draftService *service.DraftService
}

func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

type MapBanRequest struct {
	MapID string            `json:"mapId"`
	Team  domain.TeamNumber `json:"team"`
}

type LeaderActionRequest struct {
	LeaderID string            `json:"leaderId"`
	Team     domain.TeamNumber `json:"team"`
}

func (h *DraftHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.draftService.StartDraft(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *DraftHandler) BanMap(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req MapBanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.draftService.BanOrPickMap(r.Context(), id, req.MapID, req.Team)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *DraftHandler) BanOrPickLeader(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req LeaderActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.draftService.BanOrPickLeader(r.Context(), id, req.LeaderID, req.Team)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
