package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
)

type PresetHandler struct {
	presetService *service.PresetService
}

func NewPresetHandler(presetService *service.PresetService) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

type PresetRequest struct {
	Name                string            `json:"name"`
	Label               string            `json:"label"`
	MapIDs              []string          `json:"mapIds"`
	AutoBannedLeaderIDs []string          `json:"autoBannedLeaderIds"`
	Rotations           *domain.Rotations `json:"rotations"`
}

func (req PresetRequest) input() service.PresetInput {
	return service.PresetInput{
		Name:                req.Name,
		Label:               req.Label,
		MapIDs:              req.MapIDs,
		AutoBannedLeaderIDs: req.AutoBannedLeaderIDs,
		Rotations:           req.Rotations,
	}
}

type PresetsResponse struct {
	Presets []*domain.Preset `json:"presets"`
}

func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presetService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if presets == nil {
		presets = []*domain.Preset{}
	}
	writeJSON(w, http.StatusOK, PresetsResponse{Presets: presets})
}

func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	preset, err := h.presetService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (h *PresetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	preset, err := h.presetService.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

func (h *PresetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req PresetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	preset, err := h.presetService.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.presetService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
