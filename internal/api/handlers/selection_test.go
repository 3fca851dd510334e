package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)
	path := testutil.LobbyPath(lobby, "/selection")

	get := func(t *testing.T) *string {
		t.Helper()
		resp := ts.Do(t, http.MethodGet, path, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var sel handlers.SelectionResponse
		testutil.AssertJSONResponse(t, resp, &sel)
		return sel.SelectionID
	}

	assert.Nil(t, get(t))

	resp := ts.Do(t, http.MethodPut, path, map[string]string{"selectionId": "SALADIN_ARABIA"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	current := get(t)
	require.NotNil(t, current)
	assert.Equal(t, "SALADIN_ARABIA", *current)

	resp = ts.Do(t, http.MethodDelete, path, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, get(t))
}

func TestSelectionHandler_UnknownLobby(t *testing.T) {
	ts := testutil.NewTestServer(t)
	path := "/lobbies/" + uuid.New().String() + "/selection"

	tests := []struct {
		name   string
		method string
		body   interface{}
	}{
		{"set", http.MethodPut, map[string]string{"selectionId": "SALADIN_ARABIA"}},
		{"clear", http.MethodDelete, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, tt.method, path, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}
