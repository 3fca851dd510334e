package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postAction(t *testing.T, ts *testutil.TestServer, lobby *domain.Lobby, path string, body interface{}) (*http.Response, *service.ActionResult) {
	t.Helper()

	resp := ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, path), body)
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	var result service.ActionResult
	testutil.AssertJSONResponse(t, resp, &result)
	return resp, &result
}

func TestDraftHandler_Start(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("teams not ready", func(t *testing.T) {
		lobby := testutil.NewLobbyBuilder().Build(t, ts)
		resp, _ := postAction(t, ts, lobby, "/start", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("starts the leader draft", func(t *testing.T) {
		lobby := testutil.NewLobbyBuilder().Ready().Build(t, ts)
		resp, result := postAction(t, ts, lobby, "/start", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, result.Applied)
		testutil.AssertDraftPosition(t, result.Lobby, domain.LobbyStatusLeaderSelection, domain.Phase{Type: domain.PhaseBan, Index: 1}, domain.Team1)

		resp, result = postAction(t, ts, lobby, "/start", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, result.Applied)
	})
}

func TestDraftHandler_MapAndLeaderDraft(t *testing.T) {
	ts := testutil.NewTestServer(t)
	maps := testutil.MapIDs(t, ts, 3)
	lobby := testutil.NewLobbyBuilder().
		WithRotations(2, 2, 2, 2).
		WithMapDraft(maps...).
		Started().
		Build(t, ts)

	// Leader actions are ignored during the map draft.
	_, result := postAction(t, ts, lobby, "/leaders/ban-or-pick", map[string]interface{}{"leaderId": testutil.FreeLeader(t, ts, lobby), "team": 1})
	require.NotNil(t, result)
	assert.False(t, result.Applied)

	_, result = postAction(t, ts, lobby, "/maps/ban", map[string]interface{}{"mapId": maps[0], "team": 1})
	require.True(t, result.Applied)

	// Same team again is a stale request.
	_, result = postAction(t, ts, lobby, "/maps/ban", map[string]interface{}{"mapId": maps[1], "team": 1})
	require.False(t, result.Applied)

	resp, _ := postAction(t, ts, lobby, "/maps/ban", map[string]interface{}{"mapId": maps[0], "team": 2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, result = postAction(t, ts, lobby, "/maps/ban", map[string]interface{}{"mapId": maps[1], "team": 2})
	require.True(t, result.Applied)
	require.NotNil(t, result.Lobby.SelectedMapID)
	assert.Equal(t, maps[2], *result.Lobby.SelectedMapID)
	testutil.AssertDraftPosition(t, result.Lobby, domain.LobbyStatusLeaderSelection, domain.Phase{Type: domain.PhaseBan, Index: 1}, domain.Team1)

	current := result.Lobby
	for current.Status != domain.LobbyStatusCompleted {
		_, result = postAction(t, ts, lobby, "/leaders/ban-or-pick", map[string]interface{}{
			"leaderId": testutil.FreeLeader(t, ts, current),
			"team":     int(current.CurrentTeamTurn),
		})
		require.NotNil(t, result)
		require.True(t, result.Applied, "action at %s was not applied", current.DraftStatus)
		current = result.Lobby
	}

	assert.Len(t, current.Team1.SelectedLeaders, 2)
	assert.Len(t, current.Team2.SelectedLeaders, 2)
	assert.Len(t, current.Team1.BannedLeaders, 2)
	assert.Len(t, current.Team2.BannedLeaders, 2)

	resp = ts.Do(t, http.MethodGet, testutil.LobbyPath(lobby, "/history"), nil)
	defer resp.Body.Close()
	var history struct {
		Actions []*domain.DraftAction `json:"actions"`
	}
	testutil.AssertJSONResponse(t, resp, &history)
	assert.Len(t, history.Actions, 10)
}

func TestDraftHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().WithAutoBans("SHAKA_ZULU").Started().Build(t, ts)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"invalid team", map[string]interface{}{"leaderId": "SALADIN_ARABIA", "team": 3}, http.StatusBadRequest},
		{"unknown leader", map[string]interface{}{"leaderId": "NOBODY", "team": 1}, http.StatusNotFound},
		{"auto-banned leader", map[string]interface{}{"leaderId": "SHAKA_ZULU", "team": 1}, http.StatusConflict},
		{"timeout placeholder", map[string]interface{}{"leaderId": domain.TimeoutLeaderID, "team": 1}, http.StatusConflict},
		{"invalid body", "[]", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postAction(t, ts, lobby, "/leaders/ban-or-pick", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestDraftHandler_TimeoutVisibleThroughAPI(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)

	ts.Clock.Advance(ts.Config.DraftTimeout)

	resp := ts.Do(t, http.MethodGet, testutil.LobbyPath(lobby, ""), nil)
	defer resp.Body.Close()
	var view service.LobbyView
	testutil.AssertJSONResponse(t, resp, &view)

	assert.Equal(t, []string{domain.TimeoutLeaderID}, []string(view.Team1.BannedLeaders))
	testutil.AssertDraftPosition(t, view.Lobby, domain.LobbyStatusLeaderSelection, domain.Phase{Type: domain.PhaseBan, Index: 2}, domain.Team2)
	assert.Equal(t, ts.Config.DraftTimeout.Milliseconds(), view.TimerRemainingMs)
}
