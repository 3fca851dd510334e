package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetHandler_CRUD(t *testing.T) {
	ts := testutil.NewTestServer(t)
	maps := testutil.MapIDs(t, ts, 2)

	resp := ts.Do(t, http.MethodPost, "/presets", map[string]interface{}{
		"name":   "cup",
		"label":  "Cup Finals",
		"mapIds": maps,
	})
	var created domain.Preset
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()

	resp = ts.Do(t, http.MethodPost, "/presets", map[string]interface{}{"name": "cup"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.Do(t, http.MethodPut, "/presets/"+created.ID.String(), map[string]interface{}{"name": "cup", "label": "Cup"})
	var updated domain.Preset
	testutil.AssertJSONResponse(t, resp, &updated)
	resp.Body.Close()
	assert.Equal(t, "Cup", updated.Label)

	resp = ts.Do(t, http.MethodGet, "/presets", nil)
	var list handlers.PresetsResponse
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	assert.Len(t, list.Presets, 1)

	// A lobby built from the preset inherits its map pool.
	resp = ts.Do(t, http.MethodPost, "/lobbies", map[string]interface{}{
		"team1Name":    "Red",
		"team2Name":    "Blue",
		"withMapDraft": true,
		"presetId":     created.ID,
	})
	var lobby domain.Lobby
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	testutil.AssertJSONResponse(t, resp, &lobby)
	resp.Body.Close()
	assert.Empty(t, updated.MapIDs)
	assert.Len(t, lobby.MapIDs, 24)

	resp = ts.Do(t, http.MethodDelete, "/presets/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.Do(t, http.MethodGet, "/presets/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
