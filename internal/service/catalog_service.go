package service

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
)

//go:embed catalog/leaders.json catalog/maps.json
var builtinCatalog embed.FS

// CatalogDocument is the shape of a remote catalog served at CATALOG_URL.
type CatalogDocument struct {
	Leaders []*domain.Leader `json:"leaders"`
	Maps    []*domain.Map    `json:"maps"`
}

type CatalogService struct {
	catalogRepo repository.CatalogRepository
	catalogURL  string
	httpClient  *http.Client
}

func NewCatalogService(catalogRepo repository.CatalogRepository, catalogURL string) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		catalogURL:  catalogURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *CatalogService) GetLeaders(ctx context.Context) ([]*domain.Leader, error) {
	return s.catalogRepo.GetLeaders(ctx)
}

func (s *CatalogService) GetMaps(ctx context.Context) ([]*domain.Map, error) {
	return s.catalogRepo.GetMaps(ctx)
}

// Seed upserts the catalog bundled with the binary, including the TIMEOUT
// placeholder leader.
func (s *CatalogService) Seed(ctx context.Context) (int, int, error) {
	var doc CatalogDocument
	if err := readBuiltin("catalog/leaders.json", &doc.Leaders); err != nil {
		return 0, 0, err
	}
	if err := readBuiltin("catalog/maps.json", &doc.Maps); err != nil {
		return 0, 0, err
	}
	return s.store(ctx, &doc)
}

// SyncRemote fetches the catalog from the configured URL and upserts it.
func (s *CatalogService) SyncRemote(ctx context.Context) (int, int, error) {
	if s.catalogURL == "" {
		return 0, 0, fmt.Errorf("%w: no catalog url configured", domain.ErrPreconditionFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.catalogURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build catalog request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("failed to fetch catalog: status %d", resp.StatusCode)
	}

	var doc CatalogDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return 0, 0, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return s.store(ctx, &doc)
}

func (s *CatalogService) store(ctx context.Context, doc *CatalogDocument) (int, int, error) {
	now := time.Now()
	for _, l := range doc.Leaders {
		l.LastSyncedAt = now
	}
	for _, m := range doc.Maps {
		m.LastSyncedAt = now
	}

	if err := s.catalogRepo.UpsertLeaders(ctx, doc.Leaders); err != nil {
		return 0, 0, fmt.Errorf("failed to upsert leaders: %w", err)
	}
	if err := s.catalogRepo.UpsertMaps(ctx, doc.Maps); err != nil {
		return 0, 0, fmt.Errorf("failed to upsert maps: %w", err)
	}
	return len(doc.Leaders), len(doc.Maps), nil
}

func readBuiltin(name string, v interface{}) error {
	data, err := builtinCatalog.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}
