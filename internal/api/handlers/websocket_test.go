package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository/sqlstore"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/dom/civ-draft/internal/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsTimeout = 2 * time.Second

func TestWebSocket_DraftUpdatesReachSubscribers(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	snapshot := client.Subscribe(lobby.ID, wsTimeout)
	require.NotNil(t, snapshot.Lobby)
	assert.Equal(t, ts.Config.DraftTimeout.Milliseconds(), snapshot.Lobby.TimerRemainingMs)

	leader := testutil.FreeLeader(t, ts, lobby)
	resp := ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/leaders/ban-or-pick"), map[string]interface{}{"leaderId": leader, "team": 1})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := client.ExpectMessage(websocket.MessageTypeLobbyUpdated, wsTimeout)
	var updated domain.Lobby
	require.NoError(t, json.Unmarshal(msg.Payload, &updated))
	assert.Equal(t, []string{leader}, []string(updated.Team1.BannedLeaders))
	assert.Equal(t, domain.Team2, updated.CurrentTeamTurn)
}

func TestWebSocket_TimeoutPushesUpdate(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	client.Subscribe(lobby.ID, wsTimeout)

	ts.Clock.Advance(ts.Config.DraftTimeout)

	msg := client.ExpectMessage(websocket.MessageTypeLobbyUpdated, wsTimeout)
	var updated domain.Lobby
	require.NoError(t, json.Unmarshal(msg.Payload, &updated))
	assert.Equal(t, []string{domain.TimeoutLeaderID}, []string(updated.Team1.BannedLeaders))
}

func TestWebSocket_HoverAndChat(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)

	hoverer := testutil.NewWSClient(t, ts.WebSocketURL())
	watcher := testutil.NewWSClient(t, ts.WebSocketURL())
	hoverer.Subscribe(lobby.ID, wsTimeout)
	watcher.Subscribe(lobby.ID, wsTimeout)

	hoverer.SetSelection(lobby.ID, "SALADIN_ARABIA")
	msg := watcher.ExpectMessage(websocket.MessageTypeSelectionUpdated, wsTimeout)
	var selection domain.CurrentSelection
	require.NoError(t, json.Unmarshal(msg.Payload, &selection))
	assert.Equal(t, "SALADIN_ARABIA", selection.SelectionID)

	resp := ts.Do(t, http.MethodPost, testutil.LobbyPath(lobby, "/chat"), map[string]string{"pseudo": "alice", "text": "gg"})
	resp.Body.Close()
	msg = watcher.ExpectMessage(websocket.MessageTypeChatPosted, wsTimeout)
	var chat domain.ChatMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &chat))
	assert.Equal(t, "gg", chat.Text)

	watcher.Unsubscribe(lobby.ID)
	watcher.ExpectMessage(websocket.MessageTypeUnsubscribed, wsTimeout)
	hoverer.ClearSelection(lobby.ID)
	hoverer.ExpectMessage(websocket.MessageTypeSelectionUpdated, wsTimeout)
	watcher.ExpectNoMessage(200 * time.Millisecond)
}

func TestWebSocket_SubscribeUnknownLobby(t *testing.T) {
	ts := testutil.NewTestServer(t)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	client.TrySubscribe(uuid.New())

	payload := client.ExpectError(wsTimeout)
	assert.Equal(t, "NOT_FOUND", payload.Code)
}

// The same draft over the SQLite store, end to end through HTTP.
func TestDraft_SQLiteStore(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ts := testutil.NewTestServerWithRepos(t, sqlstore.NewRepositories(db.DB))
	lobby := testutil.NewLobbyBuilder().WithRotations(2, 2, 2, 2).Started().Build(t, ts)

	current := lobby
	for current.Status != domain.LobbyStatusCompleted {
		_, result := postAction(t, ts, lobby, "/leaders/ban-or-pick", map[string]interface{}{
			"leaderId": testutil.FreeLeader(t, ts, current),
			"team":     int(current.CurrentTeamTurn),
		})
		require.NotNil(t, result)
		require.True(t, result.Applied)
		current = result.Lobby
	}

	stored, err := ts.Repos.Lobby.GetByID(context.Background(), lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LobbyStatusCompleted, stored.Status)
	assert.Len(t, stored.Team1.SelectedLeaders, 2)
	assert.Len(t, stored.Team2.SelectedLeaders, 2)
	assert.Equal(t, current.Version, stored.Version)

	actions, err := ts.Repos.DraftAction.GetByLobbyID(context.Background(), lobby.ID)
	require.NoError(t, err)
	assert.Len(t, actions, 8)
}
