package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type LeadersResponse struct {
	Leaders []*domain.Leader `json:"leaders"`
}

type MapsResponse struct {
	Maps []*domain.Map `json:"maps"`
}

type SyncResponse struct {
	Leaders int `json:"leaders"`
	Maps    int `json:"maps"`
}

func (h *CatalogHandler) Leaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.catalogService.GetLeaders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeadersResponse{Leaders: leaders})
}

func (h *CatalogHandler) Maps(w http.ResponseWriter, r *http.Request) {
	maps, err := h.catalogService.GetMaps(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapsResponse{Maps: maps})
}

// Sync pulls the remote catalog from CATALOG_URL.
func (h *CatalogHandler) Sync(w http.ResponseWriter, r *http.Request) {
	leaders, maps, err := h.catalogService.SyncRemote(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Leaders: leaders, Maps: maps})
}
