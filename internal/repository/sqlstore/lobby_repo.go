package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type lobbyRepository struct {
	db *gorm.DB
}

func NewLobbyRepository(db *gorm.DB) *lobbyRepository {
	return &lobbyRepository{db: db}
}

func (r *lobbyRepository) Create(ctx context.Context, lobby *domain.Lobby) error {
	return r.db.WithContext(ctx).Create(lobby).Error
}

func (r *lobbyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error) {
	var lobby domain.Lobby
	err := r.db.WithContext(ctx).First(&lobby, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLobbyNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

func (r *lobbyRepository) UpdateDraft(ctx context.Context, lobby *domain.Lobby) error {
	return r.versionedUpdate(ctx, lobby, map[string]interface{}{
		"status":                 lobby.Status,
		"team1_selected_leaders": lobby.Team1.SelectedLeaders,
		"team1_banned_leaders":   lobby.Team1.BannedLeaders,
		"team1_banned_maps":      lobby.Team1.BannedMaps,
		"team2_selected_leaders": lobby.Team2.SelectedLeaders,
		"team2_banned_leaders":   lobby.Team2.BannedLeaders,
		"team2_banned_maps":      lobby.Team2.BannedMaps,
		"banned_map_ids":         lobby.BannedMapIDs,
		"selected_map_id":        lobby.SelectedMapID,
		"draft_status_type":      lobby.DraftStatus.Type,
		"draft_status_index":     lobby.DraftStatus.Index,
		"current_team_turn":      lobby.CurrentTeamTurn,
		"map_ban_timestamp":      lobby.MapBanTimestamp,
		"leader_ban_timestamp":   lobby.LeaderBanTimestamp,
	})
}

func (r *lobbyRepository) UpdateMembership(ctx context.Context, lobby *domain.Lobby) error {
	return r.versionedUpdate(ctx, lobby, map[string]interface{}{
		"team1_name":     lobby.Team1.Name,
		"team1_players":  lobby.Team1.Players,
		"team1_is_ready": lobby.Team1.IsReady,
		"team2_name":     lobby.Team2.Name,
		"team2_players":  lobby.Team2.Players,
		"team2_is_ready": lobby.Team2.IsReady,
		"observers":      lobby.Observers,
	})
}

// versionedUpdate writes columns only if the row is still at lobby.Version.
func (r *lobbyRepository) versionedUpdate(ctx context.Context, lobby *domain.Lobby, columns map[string]interface{}) error {
	now := time.Now()
	columns["version"] = lobby.Version + 1
	columns["updated_at"] = now

	res := r.db.WithContext(ctx).
		Model(&domain.Lobby{}).
		Where("id = ? AND version = ?", lobby.ID, lobby.Version).
		Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Lobby{}).Where("id = ?", lobby.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrLobbyNotFound
		}
		return repository.ErrConflict
	}

	lobby.Version++
	lobby.UpdatedAt = now
	return nil
}
