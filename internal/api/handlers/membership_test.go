package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipHandler_Flow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Build(t, ts)
	alice := map[string]string{"playerId": "p1", "pseudo": "alice"}

	resp := ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/observers/join"), alice)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/teams/2/join"), alice)
	var joined domain.Lobby
	testutil.AssertJSONResponse(t, resp, &joined)
	resp.Body.Close()
	assert.Empty(t, joined.Observers)
	assert.True(t, joined.Team2.HasPlayer("p1"))

	resp = ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/players/rename"), map[string]string{"playerId": "p1", "pseudo": "alicia"})
	var renamed domain.Lobby
	testutil.AssertJSONResponse(t, resp, &renamed)
	resp.Body.Close()
	assert.Equal(t, "alicia", renamed.Team2.Players[0].Pseudo)

	resp = ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/players/ready"), map[string]string{"playerId": "p1"})
	var ready domain.Lobby
	testutil.AssertJSONResponse(t, resp, &ready)
	resp.Body.Close()
	assert.True(t, ready.Team2.IsReady)
}

func TestMembershipHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Build(t, ts)

	tests := []struct {
		name           string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{"team out of range", "/teams/3/join", map[string]string{"playerId": "p1", "pseudo": "a"}, http.StatusBadRequest},
		{"team not a number", "/teams/red/join", map[string]string{"playerId": "p1", "pseudo": "a"}, http.StatusBadRequest},
		{"missing pseudo", "/teams/1/join", map[string]string{"playerId": "p1"}, http.StatusBadRequest},
		{"ready without a team", "/players/ready", map[string]string{"playerId": "ghost"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, tt.path), tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
