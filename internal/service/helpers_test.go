package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/config"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/dom/civ-draft/internal/repository/memory"
	"github.com/dom/civ-draft/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const draftTimeout = 60 * time.Second

var epoch = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	repos    *repository.Repositories
	clock    *service.ManualClock
	broker   *pubsub.PubSub
	services *service.Services
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := memory.NewRepositories()
	clock := service.NewManualClock(epoch)
	broker := pubsub.New()
	t.Cleanup(broker.Close)

	cfg := &config.Config{
		DraftTimeout:           draftTimeout,
		DefaultAutoBanLeaderID: domain.TimeoutLeaderID,
		ChatHistoryLimit:       domain.DefaultChatLimit,
	}

	services := service.NewServices(repos, cfg, broker, nil, clock, clock)
	_, _, err := services.Catalog.Seed(context.Background())
	require.NoError(t, err)

	return &fixture{
		repos:    repos,
		clock:    clock,
		broker:   broker,
		services: services,
		cfg:      cfg,
	}
}

// mapIDs returns the first n catalog maps.
func (f *fixture) mapIDs(t *testing.T, n int) []string {
	t.Helper()
	maps, err := f.repos.Catalog.GetMaps(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(maps), n)

	ids := make([]string, 0, n)
	for _, m := range maps[:n] {
		ids = append(ids, m.ID)
	}
	return ids
}

// freeLeader returns a catalog leader that is still legal in lobby.
func (f *fixture) freeLeader(t *testing.T, lobby *domain.Lobby) string {
	t.Helper()
	leaders, err := f.repos.Catalog.GetLeaders(context.Background())
	require.NoError(t, err)

	for _, l := range leaders {
		if l.ID == domain.TimeoutLeaderID || lobby.IsLeaderUsed(l.ID) || lobby.IsLeaderAutoBanned(l.ID) {
			continue
		}
		return l.ID
	}
	t.Fatal("no free leader left in catalog")
	return ""
}

func (f *fixture) lobby(t *testing.T, id uuid.UUID) *domain.Lobby {
	t.Helper()
	lobby, err := f.repos.Lobby.GetByID(context.Background(), id)
	require.NoError(t, err)
	return lobby
}

// readyLobby creates a lobby with one player per team and both teams ready.
func (f *fixture) readyLobby(t *testing.T, input service.CreateLobbyInput) *domain.Lobby {
	t.Helper()
	ctx := context.Background()

	if input.Team1Name == "" {
		input.Team1Name = "Red"
	}
	if input.Team2Name == "" {
		input.Team2Name = "Blue"
	}

	lobby, err := f.services.Lobby.CreateLobby(ctx, input)
	require.NoError(t, err)

	_, err = f.services.Membership.JoinTeam(ctx, lobby.ID, domain.Team1, domain.Player{ID: "p1", Pseudo: "alice"})
	require.NoError(t, err)
	_, err = f.services.Membership.JoinTeam(ctx, lobby.ID, domain.Team2, domain.Player{ID: "p2", Pseudo: "bob"})
	require.NoError(t, err)
	_, err = f.services.Membership.ToggleReady(ctx, lobby.ID, "p1")
	require.NoError(t, err)
	_, err = f.services.Membership.ToggleReady(ctx, lobby.ID, "p2")
	require.NoError(t, err)

	return f.lobby(t, lobby.ID)
}

// startedLobby is readyLobby followed by StartDraft.
func (f *fixture) startedLobby(t *testing.T, input service.CreateLobbyInput) *domain.Lobby {
	t.Helper()
	lobby := f.readyLobby(t, input)

	res, err := f.services.Draft.StartDraft(context.Background(), lobby.ID)
	require.NoError(t, err)
	require.True(t, res.Applied)
	return res.Lobby
}

func rotations(bf, bs, pf, ps int) *domain.Rotations {
	return &domain.Rotations{BansFirst: bf, BansSecond: bs, PicksFirst: pf, PicksSecond: ps}
}

func requireTurnConsistent(t *testing.T, lobby *domain.Lobby) {
	t.Helper()
	require.Equal(t, lobby.DerivedTeamTurn(), lobby.CurrentTeamTurn, "cached turn diverged at %s", lobby.DraftStatus)
}
