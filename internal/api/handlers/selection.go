package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/service"
)

type SelectionHandler struct {
	selectionService *service.SelectionService
}

func NewSelectionHandler(selectionService *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionService: selectionService}
}

type SetSelectionRequest struct {
	SelectionID string `json:"selectionId"`
}

type SelectionResponse struct {
	SelectionID *string `json:"selectionId"`
}

func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	selection, err := h.selectionService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var resp SelectionResponse
	if selection != nil {
		resp.SelectionID = &selection.SelectionID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SelectionHandler) Set(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req SetSelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	selection, err := h.selectionService.Set(r.Context(), id, req.SelectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var resp SelectionResponse
	if selection != nil {
		resp.SelectionID = &selection.SelectionID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SelectionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.selectionService.Clear(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
