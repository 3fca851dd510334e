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

func TestLobbyService_CreateLobby(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	allMaps, err := f.repos.Catalog.GetMaps(ctx)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   service.CreateLobbyInput
		wantErr error
		check   func(t *testing.T, lobby *domain.Lobby)
	}{
		{
			name:  "defaults",
			input: service.CreateLobbyInput{Team1Name: " Red ", Team2Name: "Blue"},
			check: func(t *testing.T, lobby *domain.Lobby) {
				assert.Equal(t, "Red", lobby.Team1.Name)
				assert.Equal(t, domain.DefaultRotations, lobby.Rotations)
				assert.Len(t, lobby.MapIDs, len(allMaps))
				assert.Equal(t, domain.Phase{Type: domain.PhaseBan, Index: 1}, lobby.DraftStatus)
				assert.Equal(t, domain.Team1, lobby.CurrentTeamTurn)
				assert.Equal(t, domain.LobbyStatusLobby, lobby.Status)
			},
		},
		{
			name: "map draft with explicit pool",
			input: service.CreateLobbyInput{
				Team1Name:    "Red",
				Team2Name:    "Blue",
				MapIDs:       []string{allMaps[0].ID, allMaps[1].ID},
				WithMapDraft: true,
				Rotations:    rotations(2, 2, 2, 2),
			},
			check: func(t *testing.T, lobby *domain.Lobby) {
				assert.Equal(t, []string{allMaps[0].ID, allMaps[1].ID}, []string(lobby.MapIDs))
				assert.Equal(t, domain.Phase{Type: domain.PhaseMapBan, Index: 1}, lobby.DraftStatus)
				assert.Equal(t, 2, lobby.BansSecond)
			},
		},
		{
			name:    "blank team name",
			input:   service.CreateLobbyInput{Team1Name: "  ", Team2Name: "Blue"},
			wantErr: domain.ErrInvalidLobby,
		},
		{
			name:    "odd ban total",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", Rotations: rotations(3, 2, 4, 4)},
			wantErr: domain.ErrInvalidRotations,
		},
		{
			name:    "unknown map",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", MapIDs: []string{"ATLANTIS"}},
			wantErr: domain.ErrInvalidLobby,
		},
		{
			name:    "duplicate map",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", MapIDs: []string{allMaps[0].ID, allMaps[0].ID}},
			wantErr: domain.ErrInvalidLobby,
		},
		{
			name:    "map draft with one map",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", MapIDs: []string{allMaps[0].ID}, WithMapDraft: true},
			wantErr: domain.ErrInvalidLobby,
		},
		{
			name:    "unknown auto-ban",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", AutoBannedLeaderIDs: []string{"NOBODY"}},
			wantErr: domain.ErrInvalidLobby,
		},
		{
			name:    "not enough leaders",
			input:   service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", Rotations: rotations(40, 20, 4, 4)},
			wantErr: domain.ErrInvalidLobby,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lobby, err := f.services.Lobby.CreateLobby(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
				return
			}

			require.NoError(t, err)
			stored := f.lobby(t, lobby.ID)
			tt.check(t, stored)
		})
	}
}

func TestLobbyService_CreateLobbyFromPreset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	maps := f.mapIDs(t, 3)
	preset, err := f.services.Preset.Create(ctx, service.PresetInput{
		Name:                "league-night",
		MapIDs:              maps,
		AutoBannedLeaderIDs: []string{"SHAKA_ZULU"},
		Rotations:           rotations(6, 2, 4, 4),
	})
	require.NoError(t, err)

	t.Run("preset supplies the config", func(t *testing.T) {
		lobby, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{
			Team1Name:    "Red",
			Team2Name:    "Blue",
			WithMapDraft: true,
			PresetID:     &preset.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, maps, []string(lobby.MapIDs))
		assert.Equal(t, []string{"SHAKA_ZULU"}, []string(lobby.AutoBannedLeaderIDs))
		assert.Equal(t, 6, lobby.BansFirst)
	})

	t.Run("explicit fields override the preset", func(t *testing.T) {
		lobby, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{
			Team1Name:           "Red",
			Team2Name:           "Blue",
			PresetID:            &preset.ID,
			MapIDs:              maps[:2],
			AutoBannedLeaderIDs: []string{},
			Rotations:           rotations(2, 2, 2, 2),
		})
		require.NoError(t, err)
		assert.Equal(t, maps[:2], []string(lobby.MapIDs))
		assert.Empty(t, lobby.AutoBannedLeaderIDs)
		assert.Equal(t, 2, lobby.BansFirst)
	})

	t.Run("unknown preset", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.services.Lobby.CreateLobby(ctx, service.CreateLobbyInput{Team1Name: "Red", Team2Name: "Blue", PresetID: &missing})
		assert.ErrorIs(t, err, domain.ErrPresetNotFound)
	})
}

func TestLobbyService_GetLobby(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Lobby.GetLobby(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrLobbyNotFound)

	lobby := f.readyLobby(t, service.CreateLobbyInput{})
	view, err := f.services.Lobby.GetLobby(ctx, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, lobby.ID, view.ID)
	assert.Zero(t, view.TimerRemainingMs)
}
