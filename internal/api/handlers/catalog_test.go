package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCatalogHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("leaders", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, "/leaders", nil)
		defer resp.Body.Close()
		var result handlers.LeadersResponse
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Len(t, result.Leaders, 56)

		ids := make([]string, 0, len(result.Leaders))
		for _, l := range result.Leaders {
			ids = append(ids, l.ID)
		}
		assert.Contains(t, ids, domain.TimeoutLeaderID)
	})

	t.Run("maps", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, "/maps", nil)
		defer resp.Body.Close()
		var result handlers.MapsResponse
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Len(t, result.Maps, 24)
	})

	t.Run("sync without a catalog url", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/catalog/sync", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStatsHandler_DisabledWithoutAnalytics(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := ts.Do(t, http.MethodGet, "/stats/leaders", nil)
	defer resp.Body.Close()
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Analytics is not enabled")
}
