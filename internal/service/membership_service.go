package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MembershipService manages rosters, team names and ready flags. It only
// holds a MembershipStore, so it cannot write draft state.
type MembershipService struct {
	lobbies repository.MembershipStore
	events  pubsub.Publisher
	log     *zap.Logger
}

func NewMembershipService(lobbies repository.MembershipStore, events pubsub.Publisher) *MembershipService {
	return &MembershipService{
		lobbies: lobbies,
		events:  events,
		log:     logger.Named("membership"),
	}
}

// JoinTeam moves a player onto team, removing them from the other team and
// the observers. Joining the team one is already on changes nothing.
func (s *MembershipService) JoinTeam(ctx context.Context, lobbyID uuid.UUID, team domain.TeamNumber, player domain.Player) (*domain.Lobby, error) {
	if !team.Valid() {
		return nil, domain.ErrInvalidTeam
	}
	player, err := normalizePlayer(player)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, lobbyID, func(l *domain.Lobby) bool {
		target := l.Team(team)
		if target.HasPlayer(player.ID) {
			return false
		}
		other := l.Team(team.Other())
		other.Players = removePlayer(other.Players, player.ID)
		l.Observers = removePlayer(l.Observers, player.ID)
		target.Players = append(target.Players, player)
		return true
	})
}

// JoinObservers moves a player off both teams into the observers.
func (s *MembershipService) JoinObservers(ctx context.Context, lobbyID uuid.UUID, player domain.Player) (*domain.Lobby, error) {
	player, err := normalizePlayer(player)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, lobbyID, func(l *domain.Lobby) bool {
		if slices.ContainsFunc(l.Observers, func(p domain.Player) bool { return p.ID == player.ID }) {
			return false
		}
		l.Team1.Players = removePlayer(l.Team1.Players, player.ID)
		l.Team2.Players = removePlayer(l.Team2.Players, player.ID)
		l.Observers = append(l.Observers, player)
		return true
	})
}

// RenamePlayer changes a player's pseudo wherever they appear. Unknown
// players are ignored.
func (s *MembershipService) RenamePlayer(ctx context.Context, lobbyID uuid.UUID, playerID, pseudo string) (*domain.Lobby, error) {
	player, err := normalizePlayer(domain.Player{ID: playerID, Pseudo: pseudo})
	if err != nil {
		return nil, err
	}

	return s.update(ctx, lobbyID, func(l *domain.Lobby) bool {
		changed := renameIn(l.Team1.Players, player)
		changed = renameIn(l.Team2.Players, player) || changed
		changed = renameIn(l.Observers, player) || changed
		return changed
	})
}

// ToggleReady flips the ready flag of the player's team.
func (s *MembershipService) ToggleReady(ctx context.Context, lobbyID uuid.UUID, playerID string) (*domain.Lobby, error) {
	var notInTeam bool
	lobby, err := s.update(ctx, lobbyID, func(l *domain.Lobby) bool {
		notInTeam = false
		switch {
		case l.Team1.HasPlayer(playerID):
			l.Team1.IsReady = !l.Team1.IsReady
		case l.Team2.HasPlayer(playerID):
			l.Team2.IsReady = !l.Team2.IsReady
		default:
			notInTeam = true
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if notInTeam {
		return nil, domain.ErrPlayerNotInTeam
	}
	return lobby, nil
}

func (s *MembershipService) update(ctx context.Context, lobbyID uuid.UUID, fn func(*domain.Lobby) bool) (*domain.Lobby, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		lobby, err := s.lobbies.GetByID(ctx, lobbyID)
		if err != nil {
			return nil, err
		}
		if !fn(lobby) {
			return lobby, nil
		}

		err = s.lobbies.UpdateMembership(ctx, lobby)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		publishLobby(s.events, s.log, lobby)
		return lobby, nil
	}
	return nil, fmt.Errorf("lobby %s: %w after %d attempts", lobbyID, repository.ErrConflict, maxUpdateAttempts)
}

func normalizePlayer(p domain.Player) (domain.Player, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Pseudo = strings.TrimSpace(p.Pseudo)
	if p.ID == "" || p.Pseudo == "" {
		return p, domain.ErrInvalidPlayer
	}
	return p, nil
}

func removePlayer[S ~[]domain.Player](players S, id string) S {
	return slices.DeleteFunc(players, func(p domain.Player) bool { return p.ID == id })
}

func renameIn(players []domain.Player, player domain.Player) bool {
	changed := false
	for i := range players {
		if players[i].ID == player.ID && players[i].Pseudo != player.Pseudo {
			players[i].Pseudo = player.Pseudo
			changed = true
		}
	}
	return changed
}
