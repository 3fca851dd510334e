package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
	"github.com/go-chi/chi/v5"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
}

func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type PlayerRequest struct {
	PlayerID string `json:"playerId"`
	Pseudo   string `json:"pseudo"`
}

func (req PlayerRequest) player() domain.Player {
	return domain.Player{ID: req.PlayerID, Pseudo: req.Pseudo}
}

func (h *MembershipHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	team, err := strconv.Atoi(chi.URLParam(r, "team"))
	if err != nil {
		http.Error(w, "Invalid team", http.StatusBadRequest)
		return
	}
	var req PlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lobby, err := h.membershipService.JoinTeam(r.Context(), id, domain.TeamNumber(team), req.player())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lobby)
}

func (h *MembershipHandler) JoinObservers(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req PlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lobby, err := h.membershipService.JoinObservers(r.Context(), id, req.player())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lobby)
}

func (h *MembershipHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req PlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lobby, err := h.membershipService.RenamePlayer(r.Context(), id, req.PlayerID, req.Pseudo)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lobby)
}

func (h *MembershipHandler) ToggleReady(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req PlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lobby, err := h.membershipService.ToggleReady(r.Context(), id, req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lobby)
}
