package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dom/civ-draft/internal/domain"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Lobby mirrors the server's lobby view.
type Lobby struct {
	domain.Lobby
	TimerRemainingMs int64 `json:"timerRemainingMs"`
}

type ActionResult struct {
	Applied bool          `json:"applied"`
	Lobby   *domain.Lobby `json:"lobby"`
}

type CreateLobbyOptions struct {
	Team1Name    string            `json:"team1Name"`
	Team2Name    string            `json:"team2Name"`
	WithMapDraft bool              `json:"withMapDraft"`
	MapIDs       []string          `json:"mapIds,omitempty"`
	Rotations    *domain.Rotations `json:"rotations,omitempty"`
	PresetID     string            `json:"presetId,omitempty"`
}

// CreateLobby creates a new lobby
func (c *APIClient) CreateLobby(opts CreateLobbyOptions) (*domain.Lobby, error) {
	var lobby domain.Lobby
	if err := c.do(http.MethodPost, "/lobbies", opts, http.StatusCreated, &lobby); err != nil {
		return nil, fmt.Errorf("create lobby: %w", err)
	}
	return &lobby, nil
}

// GetLobby fetches the lobby with its remaining phase time.
func (c *APIClient) GetLobby(lobbyID string) (*Lobby, error) {
	var lobby Lobby
	if err := c.do(http.MethodGet, "/lobbies/"+lobbyID, nil, http.StatusOK, &lobby); err != nil {
		return nil, fmt.Errorf("get lobby: %w", err)
	}
	return &lobby, nil
}

// JoinTeam puts a player on team 1 or 2.
func (c *APIClient) JoinTeam(lobbyID string, team domain.TeamNumber, playerID, pseudo string) error {
	path := fmt.Sprintf("/lobbies/%s/teams/%d/join", lobbyID, team)
	body := map[string]string{"playerId": playerID, "pseudo": pseudo}
	return c.do(http.MethodPost, path, body, http.StatusOK, nil)
}

// ToggleReady flips the ready flag of the player's team.
func (c *APIClient) ToggleReady(lobbyID, playerID string) error {
	body := map[string]string{"playerId": playerID}
	return c.do(http.MethodPost, "/lobbies/"+lobbyID+"/players/ready", body, http.StatusOK, nil)
}

func (c *APIClient) StartDraft(lobbyID string) (*ActionResult, error) {
	var result ActionResult
	if err := c.do(http.MethodPost, "/lobbies/"+lobbyID+"/start", nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("start draft: %w", err)
	}
	return &result, nil
}

func (c *APIClient) BanMap(lobbyID, mapID string, team domain.TeamNumber) (*ActionResult, error) {
	var result ActionResult
	body := map[string]interface{}{"mapId": mapID, "team": team}
	if err := c.do(http.MethodPost, "/lobbies/"+lobbyID+"/maps/ban", body, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("ban map: %w", err)
	}
	return &result, nil
}

func (c *APIClient) BanOrPickLeader(lobbyID, leaderID string, team domain.TeamNumber) (*ActionResult, error) {
	var result ActionResult
	body := map[string]interface{}{"leaderId": leaderID, "team": team}
	if err := c.do(http.MethodPost, "/lobbies/"+lobbyID+"/leaders/ban-or-pick", body, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("ban or pick leader: %w", err)
	}
	return &result, nil
}

// SetSelection hovers an entity before committing it.
func (c *APIClient) SetSelection(lobbyID, selectionID string) error {
	body := map[string]string{"selectionId": selectionID}
	return c.do(http.MethodPut, "/lobbies/"+lobbyID+"/selection", body, http.StatusOK, nil)
}

func (c *APIClient) PostChat(lobbyID, pseudo, text string) error {
	body := map[string]string{"pseudo": pseudo, "text": text}
	return c.do(http.MethodPost, "/lobbies/"+lobbyID+"/chat", body, http.StatusCreated, nil)
}

func (c *APIClient) Leaders() ([]*domain.Leader, error) {
	var resp struct {
		Leaders []*domain.Leader `json:"leaders"`
	}
	if err := c.do(http.MethodGet, "/leaders", nil, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("list leaders: %w", err)
	}
	return resp.Leaders, nil
}

func (c *APIClient) Maps() ([]*domain.Map, error) {
	var resp struct {
		Maps []*domain.Map `json:"maps"`
	}
	if err := c.do(http.MethodGet, "/maps", nil, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return resp.Maps, nil
}

func (c *APIClient) History(lobbyID string) ([]*domain.DraftAction, error) {
	var resp struct {
		Actions []*domain.DraftAction `json:"actions"`
	}
	if err := c.do(http.MethodGet, "/lobbies/"+lobbyID+"/history", nil, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return resp.Actions, nil
}

// do sends body as JSON and decodes the response into out when out is not
// nil. Any status other than want is an error carrying the response body.
func (c *APIClient) do(method, path string, body interface{}, want int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
