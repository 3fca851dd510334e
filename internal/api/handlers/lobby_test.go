package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "defaults",
			body:           map[string]interface{}{"team1Name": "Red", "team2Name": "Blue"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var lobby domain.Lobby
				testutil.AssertJSONResponse(t, resp, &lobby)
				assert.NotEqual(t, uuid.Nil, lobby.ID)
				assert.Equal(t, domain.DefaultRotations, lobby.Rotations)
				testutil.AssertDraftPosition(t, &lobby, domain.LobbyStatusLobby, domain.Phase{Type: domain.PhaseBan, Index: 1}, domain.Team1)
			},
		},
		{
			name: "map draft",
			body: map[string]interface{}{
				"team1Name":    "Red",
				"team2Name":    "Blue",
				"withMapDraft": true,
				"mapIds":       testutil.MapIDs(t, ts, 3),
				"rotations": map[string]int{
					"numberOfBansFirstRotation":   2,
					"numberOfBansSecondRotation":  2,
					"numberOfPicksFirstRotation":  2,
					"numberOfPicksSecondRotation": 2,
				},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var lobby domain.Lobby
				testutil.AssertJSONResponse(t, resp, &lobby)
				assert.Len(t, lobby.MapIDs, 3)
				assert.Equal(t, 2, lobby.PicksSecond)
				assert.Equal(t, domain.Phase{Type: domain.PhaseMapBan, Index: 1}, lobby.DraftStatus)
			},
		},
		{
			name:           "missing team name",
			body:           map[string]interface{}{"team1Name": "Red"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown preset",
			body:           map[string]interface{}{"team1Name": "Red", "team2Name": "Blue", "presetId": uuid.New()},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodPost, "/lobbies", tt.body)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestLobbyHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Started().Build(t, ts)

	t.Run("includes the remaining timer", func(t *testing.T) {
		ts.Clock.Advance(15 * time.Second)

		resp := ts.Do(t, http.MethodGet, testutil.LobbyPath(lobby, ""), nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var view service.LobbyView
		testutil.AssertJSONResponse(t, resp, &view)
		assert.Equal(t, lobby.ID, view.ID)
		assert.Equal(t, int64(45_000), view.TimerRemainingMs)
	})

	t.Run("not found", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, "/lobbies/"+uuid.NewString(), nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, "/lobbies/abc", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
