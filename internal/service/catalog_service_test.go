package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository/memory"
	"github.com/dom/civ-draft/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Seed(t *testing.T) {
	repo := memory.NewCatalogRepository()
	catalog := service.NewCatalogService(repo, "")
	ctx := context.Background()

	leaders, maps, err := catalog.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 56, leaders)
	assert.Equal(t, 24, maps)

	timeout, err := repo.GetLeader(ctx, domain.TimeoutLeaderID)
	require.NoError(t, err)
	assert.False(t, timeout.LastSyncedAt.IsZero())

	// Seeding twice upserts rather than duplicating.
	_, _, err = catalog.Seed(ctx)
	require.NoError(t, err)
	all, err := catalog.GetLeaders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 56)
}

func TestCatalogService_SyncRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("no url configured", func(t *testing.T) {
		catalog := service.NewCatalogService(memory.NewCatalogRepository(), "")
		_, _, err := catalog.SyncRemote(ctx)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("upserts the remote document", func(t *testing.T) {
		doc := service.CatalogDocument{
			Leaders: []*domain.Leader{{ID: "NEW_LEADER", Name: "New Leader", Civilization: "Somewhere"}},
			Maps:    []*domain.Map{{ID: "NEW_MAP", Name: "New Map"}},
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(doc)
		}))
		defer srv.Close()

		repo := memory.NewCatalogRepository()
		catalog := service.NewCatalogService(repo, srv.URL)

		leaders, maps, err := catalog.SyncRemote(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, leaders)
		assert.Equal(t, 1, maps)

		m, err := repo.GetMap(ctx, "NEW_MAP")
		require.NoError(t, err)
		assert.Equal(t, "New Map", m.Name)
	})

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		catalog := service.NewCatalogService(memory.NewCatalogRepository(), srv.URL)
		_, _, err := catalog.SyncRemote(ctx)
		assert.ErrorContains(t, err, "status 502")
	})
}
