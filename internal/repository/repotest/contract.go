// Package repotest holds behaviour checks shared by every repository backend.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises every repository in repos. newRepos is called once per
// subtest so backends can hand out isolated state.
func Run(t *testing.T, newRepos func(t *testing.T) *repository.Repositories) {
	t.Run("Lobby", func(t *testing.T) { testLobby(t, newRepos(t)) })
	t.Run("Selection", func(t *testing.T) { testSelection(t, newRepos(t)) })
	t.Run("Chat", func(t *testing.T) { testChat(t, newRepos(t)) })
	t.Run("DraftAction", func(t *testing.T) { testDraftAction(t, newRepos(t)) })
	t.Run("Catalog", func(t *testing.T) { testCatalog(t, newRepos(t)) })
	t.Run("Preset", func(t *testing.T) { testPreset(t, newRepos(t)) })
}

func newLobby() *domain.Lobby {
	return domain.NewLobby(uuid.New(), domain.LobbyConfig{
		Team1Name:           "Red",
		Team2Name:           "Blue",
		Rotations:           domain.DefaultRotations,
		MapIDs:              []string{"A", "B", "C"},
		AutoBannedLeaderIDs: []string{"AUTO"},
		WithMapDraft:        true,
	})
}

func testLobby(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.Lobby

	lobby := newLobby()
	require.NoError(t, repo.Create(ctx, lobby))

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, lobby.ID, got.ID)
		assert.Equal(t, domain.LobbyStatusLobby, got.Status)
		assert.Equal(t, "Red", got.Team1.Name)
		assert.Equal(t, []string{"A", "B", "C"}, []string(got.MapIDs))
		assert.Equal(t, []string{"AUTO"}, []string(got.AutoBannedLeaderIDs))
		assert.Equal(t, domain.Phase{Type: domain.PhaseMapBan, Index: 1}, got.DraftStatus)
		assert.Equal(t, domain.DefaultRotations, got.Rotations)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrLobbyNotFound)
	})

	t.Run("draft update bumps version", func(t *testing.T) {
		current, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		version := current.Version

		ts := int64(1234)
		current.Status = domain.LobbyStatusMapSelection
		current.Team1.BannedMaps = append(current.Team1.BannedMaps, "A")
		current.BannedMapIDs = append(current.BannedMapIDs, "A")
		current.DraftStatus = domain.Phase{Type: domain.PhaseMapBan, Index: 2}
		current.CurrentTeamTurn = domain.Team2
		current.MapBanTimestamp = &ts
		require.NoError(t, repo.UpdateDraft(ctx, current))
		assert.Equal(t, version+1, current.Version)

		got, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, version+1, got.Version)
		assert.Equal(t, domain.LobbyStatusMapSelection, got.Status)
		assert.Equal(t, []string{"A"}, []string(got.BannedMapIDs))
		assert.Equal(t, []string{"A"}, []string(got.Team1.BannedMaps))
		assert.Equal(t, domain.Team2, got.CurrentTeamTurn)
		require.NotNil(t, got.MapBanTimestamp)
		assert.Equal(t, ts, *got.MapBanTimestamp)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		first, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)

		first.Team2.IsReady = true
		require.NoError(t, repo.UpdateMembership(ctx, first))

		second.Status = domain.LobbyStatusCompleted
		assert.ErrorIs(t, repo.UpdateDraft(ctx, second), repository.ErrConflict)

		got, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LobbyStatusMapSelection, got.Status)
	})

	t.Run("membership update leaves draft fields", func(t *testing.T) {
		current, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)

		current.Team1.Players = append(current.Team1.Players, domain.Player{ID: "p1", Pseudo: "alice"})
		current.Observers = append(current.Observers, domain.Player{ID: "p9", Pseudo: "eve"})
		current.Team1.Name = "Crimson"
		// Draft fields smuggled through a membership write are dropped.
		current.Status = domain.LobbyStatusCompleted
		smuggled := "B"
		current.SelectedMapID = &smuggled
		require.NoError(t, repo.UpdateMembership(ctx, current))

		got, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, "Crimson", got.Team1.Name)
		assert.Equal(t, []domain.Player{{ID: "p1", Pseudo: "alice"}}, []domain.Player(got.Team1.Players))
		assert.Equal(t, []domain.Player{{ID: "p9", Pseudo: "eve"}}, []domain.Player(got.Observers))
		assert.Equal(t, domain.LobbyStatusMapSelection, got.Status)
		assert.Nil(t, got.SelectedMapID)
	})

	t.Run("draft update leaves membership fields", func(t *testing.T) {
		current, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)

		current.Team1.Players = nil
		current.Team1.Name = "Ignored"
		selected := "C"
		current.SelectedMapID = &selected
		require.NoError(t, repo.UpdateDraft(ctx, current))

		got, err := repo.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, "Crimson", got.Team1.Name)
		assert.Len(t, got.Team1.Players, 1)
		require.NotNil(t, got.SelectedMapID)
		assert.Equal(t, "C", *got.SelectedMapID)
	})

	t.Run("update of missing lobby", func(t *testing.T) {
		err := repo.UpdateDraft(ctx, newLobby())
		assert.ErrorIs(t, err, domain.ErrLobbyNotFound)
	})
}

func testSelection(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.Selection
	lobbyID := uuid.New()

	got, err := repo.Get(ctx, lobbyID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, &domain.CurrentSelection{LobbyID: lobbyID, SelectionID: "X", UpdatedAt: time.Now()}))
	require.NoError(t, repo.Set(ctx, &domain.CurrentSelection{LobbyID: lobbyID, SelectionID: "Y", UpdatedAt: time.Now()}))

	got, err = repo.Get(ctx, lobbyID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Y", got.SelectionID)

	require.NoError(t, repo.Clear(ctx, lobbyID))
	got, err = repo.Get(ctx, lobbyID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Clearing twice is fine.
	assert.NoError(t, repo.Clear(ctx, lobbyID))
}

func testChat(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.Chat
	lobbyID := uuid.New()
	base := time.Now().Truncate(time.Millisecond)

	for i, text := range []string{"one", "two", "three", "four"} {
		require.NoError(t, repo.Create(ctx, &domain.ChatMessage{
			ID:        uuid.New(),
			LobbyID:   lobbyID,
			Pseudo:    "alice",
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.ChatMessage{
		ID: uuid.New(), LobbyID: uuid.New(), Pseudo: "bob", Text: "elsewhere", CreatedAt: base,
	}))

	msgs, err := repo.ListRecent(ctx, lobbyID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "three", msgs[0].Text)
	assert.Equal(t, "four", msgs[1].Text)

	msgs, err = repo.ListRecent(ctx, lobbyID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	msgs, err = repo.ListRecent(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func testDraftAction(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.DraftAction
	lobbyID := uuid.New()
	base := time.Now().Truncate(time.Millisecond)

	entities := []string{"MAP_A", "LEADER_A", "LEADER_B"}
	for i, entity := range entities {
		family := domain.LobbyStatusLeaderSelection
		phase := domain.Phase{Type: domain.PhaseBan, Index: i}
		if i == 0 {
			family = domain.LobbyStatusMapSelection
			phase = domain.Phase{Type: domain.PhaseMapBan, Index: 1}
		}
		require.NoError(t, repo.Create(ctx, &domain.DraftAction{
			ID:       uuid.New(),
			LobbyID:  lobbyID,
			Family:   family,
			Phase:    phase,
			Team:     domain.MapBanTeam(i),
			EntityID: entity,
			Auto:     i == 2,
			ActedAt:  base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	actions, err := repo.GetByLobbyID(ctx, lobbyID)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	for i, action := range actions {
		assert.Equal(t, entities[i], action.EntityID)
	}
	assert.Equal(t, domain.PhaseMapBan, actions[0].Phase.Type)
	assert.True(t, actions[2].Auto)

	actions, err = repo.GetByLobbyID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func testCatalog(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.Catalog

	require.NoError(t, repo.UpsertLeaders(ctx, []*domain.Leader{
		{ID: "B_LEADER", Name: "Bravo", Civilization: "Beta", Filters: []string{"science"}},
		{ID: "A_LEADER", Name: "Alpha", Civilization: "Alef"},
	}))
	require.NoError(t, repo.UpsertMaps(ctx, []*domain.Map{{ID: "PANGAEA", Name: "Pangaea"}}))

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, repo.UpsertLeaders(ctx, []*domain.Leader{{ID: "B_LEADER", Name: "Bravo II"}}))
		got, err := repo.GetLeader(ctx, "B_LEADER")
		require.NoError(t, err)
		assert.Equal(t, "Bravo II", got.Name)

		leaders, err := repo.GetLeaders(ctx)
		require.NoError(t, err)
		assert.Len(t, leaders, 2)
	})

	t.Run("empty upsert", func(t *testing.T) {
		assert.NoError(t, repo.UpsertLeaders(ctx, nil))
		assert.NoError(t, repo.UpsertMaps(ctx, nil))
	})

	t.Run("lookups", func(t *testing.T) {
		m, err := repo.GetMap(ctx, "PANGAEA")
		require.NoError(t, err)
		assert.Equal(t, "Pangaea", m.Name)

		_, err = repo.GetMap(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrMapNotFound)
		_, err = repo.GetLeader(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrLeaderNotFound)
	})
}

func testPreset(t *testing.T, repos *repository.Repositories) {
	ctx := context.Background()
	repo := repos.Preset

	preset := &domain.Preset{
		ID:                  uuid.New(),
		Name:                "ranked",
		Label:               "Ranked",
		MapIDs:              []string{"A", "B"},
		AutoBannedLeaderIDs: []string{"X"},
		Rotations:           domain.DefaultRotations,
	}
	require.NoError(t, repo.Create(ctx, preset))

	got, err := repo.GetByName(ctx, "ranked")
	require.NoError(t, err)
	assert.Equal(t, preset.ID, got.ID)
	assert.Equal(t, []string{"A", "B"}, []string(got.MapIDs))
	assert.Equal(t, domain.DefaultRotations, got.Rotations)

	preset.Label = "Ranked 2v2"
	preset.Rotations = domain.Rotations{BansFirst: 2, BansSecond: 2, PicksFirst: 2, PicksSecond: 2}
	require.NoError(t, repo.Update(ctx, preset))

	got, err = repo.GetByID(ctx, preset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ranked 2v2", got.Label)
	assert.Equal(t, 2, got.BansFirst)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, preset.ID))
	_, err = repo.GetByID(ctx, preset.ID)
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, preset.ID), domain.ErrPresetNotFound)
	assert.ErrorIs(t, repo.Update(ctx, preset), domain.ErrPresetNotFound)
	_, err = repo.GetByName(ctx, "ranked")
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)
}
