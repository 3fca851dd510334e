package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
)

// LobbyBuilder creates lobbies through the services with sensible defaults
type LobbyBuilder struct {
	input   service.CreateLobbyInput
	ready   bool
	started bool
}

// NewLobbyBuilder creates a new LobbyBuilder with default values
func NewLobbyBuilder() *LobbyBuilder {
	return &LobbyBuilder{
		input: service.CreateLobbyInput{
			Team1Name: "Red",
			Team2Name: "Blue",
		},
	}
}

// WithRotations sets the four rotation sizes
func (b *LobbyBuilder) WithRotations(bansFirst, bansSecond, picksFirst, picksSecond int) *LobbyBuilder {
	b.input.Rotations = &domain.Rotations{
		BansFirst:   bansFirst,
		BansSecond:  bansSecond,
		PicksFirst:  picksFirst,
		PicksSecond: picksSecond,
	}
	return b
}

// WithMapDraft enables the map draft over mapIDs
func (b *LobbyBuilder) WithMapDraft(mapIDs ...string) *LobbyBuilder {
	b.input.WithMapDraft = true
	b.input.MapIDs = mapIDs
	return b
}

// WithAutoBans sets the leaders banned before the draft
func (b *LobbyBuilder) WithAutoBans(leaderIDs ...string) *LobbyBuilder {
	b.input.AutoBannedLeaderIDs = leaderIDs
	return b
}

// Ready seats one player per team and marks both teams ready
func (b *LobbyBuilder) Ready() *LobbyBuilder {
	b.ready = true
	return b
}

// Started is Ready followed by StartDraft
func (b *LobbyBuilder) Started() *LobbyBuilder {
	b.ready = true
	b.started = true
	return b
}

// Build creates the lobby and returns its latest stored state
func (b *LobbyBuilder) Build(t *testing.T, ts *TestServer) *domain.Lobby {
	t.Helper()
	ctx := context.Background()

	lobby, err := ts.Services.Lobby.CreateLobby(ctx, b.input)
	if err != nil {
		t.Fatalf("failed to create lobby: %v", err)
	}

	if b.ready {
		members := ts.Services.Membership
		for team, player := range map[domain.TeamNumber]domain.Player{
			domain.Team1: {ID: "p1", Pseudo: "alice"},
			domain.Team2: {ID: "p2", Pseudo: "bob"},
		} {
			if _, err := members.JoinTeam(ctx, lobby.ID, team, player); err != nil {
				t.Fatalf("failed to join team %d: %v", team, err)
			}
			if _, err := members.ToggleReady(ctx, lobby.ID, player.ID); err != nil {
				t.Fatalf("failed to ready team %d: %v", team, err)
			}
		}
	}

	if b.started {
		if _, err := ts.Services.Draft.StartDraft(ctx, lobby.ID); err != nil {
			t.Fatalf("failed to start draft: %v", err)
		}
	}

	lobby, err = ts.Repos.Lobby.GetByID(ctx, lobby.ID)
	if err != nil {
		t.Fatalf("failed to reload lobby: %v", err)
	}
	return lobby
}

// MapIDs returns the first n catalog maps
func MapIDs(t *testing.T, ts *TestServer, n int) []string {
	t.Helper()

	maps, err := ts.Services.Catalog.GetMaps(context.Background())
	if err != nil {
		t.Fatalf("failed to list maps: %v", err)
	}
	if len(maps) < n {
		t.Fatalf("catalog has %d maps, need %d", len(maps), n)
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = maps[i].ID
	}
	return ids
}

// FreeLeader returns a catalog leader still legal in lobby
func FreeLeader(t *testing.T, ts *TestServer, lobby *domain.Lobby) string {
	t.Helper()

	leaders, err := ts.Services.Catalog.GetLeaders(context.Background())
	if err != nil {
		t.Fatalf("failed to list leaders: %v", err)
	}
	for _, l := range leaders {
		if l.ID != domain.TimeoutLeaderID && !lobby.IsLeaderUsed(l.ID) && !lobby.IsLeaderAutoBanned(l.ID) {
			return l.ID
		}
	}
	t.Fatal("no free leader left in catalog")
	return ""
}

// NewJSONRequest creates an HTTP request with a JSON body
func NewJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Do sends a JSON request to path under the API root. The caller closes the
// response body.
func (ts *TestServer) Do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(NewJSONRequest(t, method, ts.APIURL(path), body))
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// LobbyPath returns the API path of a lobby sub-resource
func LobbyPath(lobby *domain.Lobby, suffix string) string {
	return fmt.Sprintf("/lobbies/%s%s", lobby.ID, suffix)
}
