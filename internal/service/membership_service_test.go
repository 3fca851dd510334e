package service_test

import (
	"context"
	"testing"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipService_JoinMovesPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	members := f.services.Membership

	lobby, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue"})
	require.NoError(t, err)
	alice := domain.Player{ID: "p1", Pseudo: "alice"}

	l, err := members.JoinObservers(ctx, lobby.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, []domain.Player{alice}, []domain.Player(l.Observers))

	l, err = members.JoinTeam(ctx, lobby.ID, domain.Team1, alice)
	require.NoError(t, err)
	assert.Empty(t, l.Observers)
	assert.True(t, l.Team1.HasPlayer("p1"))

	l, err = members.JoinTeam(ctx, lobby.ID, domain.Team2, alice)
	require.NoError(t, err)
	assert.False(t, l.Team1.HasPlayer("p1"))
	assert.True(t, l.Team2.HasPlayer("p1"))

	// Joining the same team again changes nothing.
	version := l.Version
	l, err = members.JoinTeam(ctx, lobby.ID, domain.Team2, alice)
	require.NoError(t, err)
	assert.Equal(t, version, l.Version)
	assert.Len(t, l.Team2.Players, 1)
}

func TestMembershipService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	members := f.services.Membership

	lobby, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue"})
	require.NoError(t, err)

	_, err = members.JoinTeam(ctx, lobby.ID, domain.TeamNumber(0), domain.Player{ID: "p1", Pseudo: "alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidTeam)

	_, err = members.JoinTeam(ctx, lobby.ID, domain.Team1, domain.Player{ID: "p1", Pseudo: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidPlayer)

	_, err = members.JoinObservers(ctx, uuid.New(), domain.Player{ID: "p1", Pseudo: "alice"})
	assert.ErrorIs(t, err, domain.ErrLobbyNotFound)

	_, err = members.ToggleReady(ctx, lobby.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrPlayerNotInTeam)
}

func TestMembershipService_RenameAndReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	members := f.services.Membership

	lobby, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue"})
	require.NoError(t, err)
	_, err = members.JoinTeam(ctx, lobby.ID, domain.Team1, domain.Player{ID: "p1", Pseudo: "alice"})
	require.NoError(t, err)

	l, err := members.RenamePlayer(ctx, lobby.ID, "p1", "alicia")
	require.NoError(t, err)
	assert.Equal(t, "alicia", l.Team1.Players[0].Pseudo)

	l, err = members.ToggleReady(ctx, lobby.ID, "p1")
	require.NoError(t, err)
	assert.True(t, l.Team1.IsReady)
	assert.False(t, l.Team2.IsReady)

	l, err = members.ToggleReady(ctx, lobby.ID, "p1")
	require.NoError(t, err)
	assert.False(t, l.Team1.IsReady)
}

func TestMembershipService_NeverTouchesDraftState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lobby := f.startedLobby(t, service.CreateLobbyInput{})
	res, err := f.services.Draft.BanOrPickLeader(ctx, lobby.ID, f.freeLeader(t, lobby), domain.Team1)
	require.NoError(t, err)
	before := res.Lobby

	_, err = f.services.Membership.JoinObservers(ctx, lobby.ID, domain.Player{ID: "p9", Pseudo: "late"})
	require.NoError(t, err)

	after := f.lobby(t, lobby.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.DraftStatus, after.DraftStatus)
	assert.Equal(t, before.CurrentTeamTurn, after.CurrentTeamTurn)
	assert.Equal(t, before.Team1.BannedLeaders, after.Team1.BannedLeaders)
	assert.Equal(t, *before.LeaderBanTimestamp, *after.LeaderBanTimestamp)
	assert.Equal(t, before.Version+1, after.Version)
}
