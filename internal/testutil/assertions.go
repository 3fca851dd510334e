package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the status without consuming the body.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "status of %s %s", resp.Request.Method, resp.Request.URL.Path)
}

// AssertJSONResponse decodes the body into v. A decode failure reports the
// raw body.
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body := readBody(t, resp)
	require.NoError(t, json.Unmarshal(body, v), "body: %s", body)
}

// AssertErrorResponse checks the status and that the plain-text body mentions
// expectedMessage.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()
	AssertStatusCode(t, resp, expectedStatus)
	assert.Contains(t, string(readBody(t, resp)), expectedMessage)
}

// AssertDraftPosition verifies the lobby's status, phase and cached turn.
func AssertDraftPosition(t *testing.T, lobby *domain.Lobby, status domain.LobbyStatus, phase domain.Phase, team domain.TeamNumber) {
	t.Helper()
	assert.Equal(t, status, lobby.Status, "unexpected status")
	assert.Equal(t, phase, lobby.DraftStatus, "unexpected phase")
	assert.Equal(t, team, lobby.CurrentTeamTurn, "unexpected team")
	assert.Equal(t, lobby.DerivedTeamTurn(), lobby.CurrentTeamTurn, "cached turn diverged from schedule")
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response body")
	return body
}
