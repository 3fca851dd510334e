package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/civ-draft/internal/api/handlers"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Build(t, ts)
	path := testutil.LobbyPath(lobby, "/chat")

	for i := 1; i <= 3; i++ {
		resp := ts.Do(t, http.MethodPost, path, map[string]string{"pseudo": "alice", "text": fmt.Sprintf("hello %d", i)})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := ts.Do(t, http.MethodGet, path+"?limit=2", nil)
	defer resp.Body.Close()
	var list handlers.MessagesResponse
	testutil.AssertJSONResponse(t, resp, &list)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "hello 2", list.Messages[0].Text)
	assert.Equal(t, "hello 3", list.Messages[1].Text)
}

func TestChatHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	lobby := testutil.NewLobbyBuilder().Build(t, ts)

	tests := []struct {
		name           string
		lobbyPath      string
		body           interface{}
		expectedStatus int
	}{
		{"empty text", testutil.LobbyPath(lobby, "/chat"), map[string]string{"pseudo": "a", "text": " "}, http.StatusBadRequest},
		{"too long", testutil.LobbyPath(lobby, "/chat"), map[string]string{"pseudo": "a", "text": strings.Repeat("x", domain.MaxChatMessageLength+1)}, http.StatusBadRequest},
		{"unknown lobby", "/lobbies/" + uuid.NewString() + "/chat", map[string]string{"pseudo": "a", "text": "hi"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodPost, tt.lobbyPath, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("bad limit", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, testutil.LobbyPath(lobby, "/chat?limit=abc"), nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
