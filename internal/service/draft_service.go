package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxUpdateAttempts = 8
	timeoutDeadline   = 10 * time.Second
)

// ActionRecorder receives every applied draft action after it commits.
type ActionRecorder interface {
	RecordAction(ctx context.Context, action *domain.DraftAction) error
}

// DraftSettings are the engine's static knobs.
type DraftSettings struct {
	Timeout         time.Duration
	DefaultMapID    string
	DefaultLeaderID string
}

// ActionResult reports whether a request changed the lobby. Applied is false
// for stale requests, which are not errors.
type ActionResult struct {
	Applied bool          `json:"applied"`
	Lobby   *domain.Lobby `json:"lobby"`
}

// DraftDeps groups the collaborators of the draft engine.
type DraftDeps struct {
	Lobbies   repository.DraftStore
	Catalog   repository.CatalogRepository
	Actions   repository.DraftActionRepository
	Selection repository.SelectionRepository // optional
	Recorder  ActionRecorder                 // optional
	Events    pubsub.Publisher
	Clock     Clock
	Scheduler Scheduler
}

// DraftService is the draft state machine. It is the only writer of the
// draft fields of a lobby and holds no locks: every mutation is one
// versioned read-modify-write, and timeouts are fenced by phase timestamp.
type DraftService struct {
	lobbies   repository.DraftStore
	catalog   repository.CatalogRepository
	actions   repository.DraftActionRepository
	selection repository.SelectionRepository
	recorder  ActionRecorder
	events    pubsub.Publisher
	clock     Clock
	scheduler Scheduler
	settings  DraftSettings
	log       *zap.Logger
}

func NewDraftService(deps DraftDeps, settings DraftSettings) *DraftService {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = NewTimerScheduler()
	}
	if settings.DefaultLeaderID == "" {
		settings.DefaultLeaderID = domain.TimeoutLeaderID
	}
	return &DraftService{
		lobbies:   deps.Lobbies,
		catalog:   deps.Catalog,
		actions:   deps.Actions,
		selection: deps.Selection,
		recorder:  deps.Recorder,
		events:    deps.Events,
		clock:     deps.Clock,
		scheduler: deps.Scheduler,
		settings:  settings,
		log:       logger.Named("draft"),
	}
}

// draftRequest describes one ban or pick. A zero team and empty entity mean
// "whoever's turn it is, with the default entity", which is what a timeout
// plays. A non-nil token fences the request to one phase instant.
type draftRequest struct {
	lobbyID  uuid.UUID
	family   domain.LobbyStatus
	team     domain.TeamNumber
	entityID string
	token    *int64
}

func (r draftRequest) auto() bool { return r.token != nil }

// StartDraft moves a ready lobby out of LOBBY into its first draft family and
// opens the first timeout window.
func (s *DraftService) StartDraft(ctx context.Context, lobbyID uuid.UUID) (*ActionResult, error) {
	lobby, applied, err := s.updateDraft(ctx, lobbyID, func(l *domain.Lobby) (bool, error) {
		if l.Status != domain.LobbyStatusLobby {
			return false, nil
		}
		if !l.BothTeamsReady() {
			return false, domain.ErrTeamsNotReady
		}

		ts := s.nextTimestamp(l)
		if l.WithMapDraft {
			l.Status = domain.LobbyStatusMapSelection
			l.MapBanTimestamp = &ts
		} else {
			l.Status = domain.LobbyStatusLeaderSelection
			l.LeaderBanTimestamp = &ts
		}
		l.CurrentTeamTurn = l.DerivedTeamTurn()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.log.Info("Draft started", zap.String("lobby_id", lobbyID.String()), zap.String("status", string(lobby.Status)))
		s.afterCommit(ctx, lobby, nil)
	}
	return &ActionResult{Applied: applied, Lobby: lobby}, nil
}

// BanOrPickMap bans mapID for team during the map draft.
func (s *DraftService) BanOrPickMap(ctx context.Context, lobbyID uuid.UUID, mapID string, team domain.TeamNumber) (*ActionResult, error) {
	if !team.Valid() {
		return nil, domain.ErrInvalidTeam
	}
	return s.act(ctx, draftRequest{
		lobbyID:  lobbyID,
		family:   domain.LobbyStatusMapSelection,
		team:     team,
		entityID: mapID,
	})
}

// BanOrPickLeader bans or picks leaderID for team, depending on the current
// phase of the leader draft.
func (s *DraftService) BanOrPickLeader(ctx context.Context, lobbyID uuid.UUID, leaderID string, team domain.TeamNumber) (*ActionResult, error) {
	if !team.Valid() {
		return nil, domain.ErrInvalidTeam
	}
	return s.act(ctx, draftRequest{
		lobbyID:  lobbyID,
		family:   domain.LobbyStatusLeaderSelection,
		team:     team,
		entityID: leaderID,
	})
}

// HandleTimeout is the watchdog callback. It plays the default entity for the
// team whose turn it is, but only if the lobby is still in family and the
// phase timestamp still equals token. It never returns an error; failures are
// logged. The result reports whether an action was applied.
func (s *DraftService) HandleTimeout(ctx context.Context, lobbyID uuid.UUID, family domain.LobbyStatus, token int64) (applied bool) {
	log := s.log.With(
		zap.String("lobby_id", lobbyID.String()),
		zap.String("family", string(family)),
		zap.Int64("token", token),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Timeout handler panicked", zap.Any("panic", r))
			applied = false
		}
	}()

	res, err := s.act(ctx, draftRequest{lobbyID: lobbyID, family: family, token: &token})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Debug("Timeout ignored, lobby is gone")
		return false
	case err != nil:
		log.Warn("Timeout auto-play failed", zap.Error(err))
		return false
	case !res.Applied:
		log.Debug("Timeout ignored, phase already resolved")
		return false
	}

	log.Info("Timeout auto-played", zap.String("draft_status", res.Lobby.DraftStatus.String()))
	return true
}

// GetHistory returns the applied actions of a lobby in play order.
func (s *DraftService) GetHistory(ctx context.Context, lobbyID uuid.UUID) ([]*domain.DraftAction, error) {
	if _, err := s.lobbies.GetByID(ctx, lobbyID); err != nil {
		return nil, err
	}
	return s.actions.GetByLobbyID(ctx, lobbyID)
}

// TimerRemaining returns how long the current phase has left before its
// watchdog fires. Zero outside the draft families.
func (s *DraftService) TimerRemaining(l *domain.Lobby) time.Duration {
	ts := l.PhaseTimestamp(l.Status)
	if ts == nil {
		return 0
	}
	deadline := time.UnixMilli(*ts).Add(s.settings.Timeout)
	remaining := deadline.Sub(s.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *DraftService) act(ctx context.Context, req draftRequest) (*ActionResult, error) {
	var leaders []*domain.Leader
	if req.auto() && req.family == domain.LobbyStatusLeaderSelection {
		var err error
		if leaders, err = s.catalog.GetLeaders(ctx); err != nil {
			return nil, err
		}
	}

	var action *domain.DraftAction
	lobby, applied, err := s.updateDraft(ctx, req.lobbyID, func(l *domain.Lobby) (bool, error) {
		action = nil

		if l.Status != req.family || domain.FamilyFor(l.DraftStatus.Type) != req.family {
			return false, nil
		}
		if req.token != nil {
			current := l.PhaseTimestamp(req.family)
			if current == nil || *current != *req.token {
				return false, nil
			}
		}

		team := req.team
		if team == 0 {
			team = l.CurrentTeamTurn
		}
		if team != l.CurrentTeamTurn {
			return false, nil
		}

		entityID := req.entityID
		if entityID == "" {
			entityID = s.timeoutEntity(l, leaders)
			if entityID == "" {
				return false, domain.ErrNoLegalCandidate
			}
		}

		played := l.DraftStatus
		var err error
		if req.family == domain.LobbyStatusMapSelection {
			err = applyMapBan(l, entityID, team)
		} else {
			err = s.applyLeader(ctx, l, entityID, team, req.auto())
		}
		if err != nil {
			return false, err
		}

		ts := s.nextTimestamp(l)
		if req.family == domain.LobbyStatusMapSelection {
			l.MapBanTimestamp = &ts
		}
		if l.Status == domain.LobbyStatusLeaderSelection || l.Status == domain.LobbyStatusCompleted {
			l.LeaderBanTimestamp = &ts
		}

		action = &domain.DraftAction{
			ID:       uuid.New(),
			LobbyID:  l.ID,
			Family:   req.family,
			Phase:    played,
			Team:     team,
			EntityID: entityID,
			Auto:     req.auto(),
			ActedAt:  time.UnixMilli(ts),
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.afterCommit(ctx, lobby, action)
	}
	return &ActionResult{Applied: applied, Lobby: lobby}, nil
}

// applyMapBan bans mapID for team and, once a single map remains, selects it
// and opens the leader draft at BAN1.
func applyMapBan(l *domain.Lobby, mapID string, team domain.TeamNumber) error {
	if !slices.Contains(l.MapIDs, mapID) {
		return domain.ErrMapNotInPool
	}
	if slices.Contains(l.BannedMapIDs, mapID) {
		return domain.ErrMapAlreadyBanned
	}

	t := l.Team(team)
	t.BannedMaps = append(t.BannedMaps, mapID)
	l.BannedMapIDs = append(l.BannedMapIDs, mapID)

	next, last := domain.NextMapPhase(l.DraftStatus, len(l.BannedMapIDs), len(l.MapIDs))
	l.DraftStatus = next
	if last {
		remaining := l.RemainingMapIDs()
		if len(remaining) > 0 {
			selected := remaining[0]
			l.SelectedMapID = &selected
		}
		l.Status = domain.LobbyStatusLeaderSelection
	}
	l.CurrentTeamTurn = l.DerivedTeamTurn()
	return nil
}

// applyLeader records a ban or pick for team according to the current phase.
// Only the watchdog may play the timeout placeholder, and it is then exempt
// from the duplicate checks.
func (s *DraftService) applyLeader(ctx context.Context, l *domain.Lobby, leaderID string, team domain.TeamNumber, auto bool) error {
	if _, err := s.catalog.GetLeader(ctx, leaderID); err != nil {
		return err
	}
	if leaderID == domain.TimeoutLeaderID && !auto {
		return domain.ErrLeaderUnavailable
	}
	if leaderID != domain.TimeoutLeaderID {
		if l.IsLeaderAutoBanned(leaderID) {
			return domain.ErrLeaderAutoBanned
		}
		if l.IsLeaderUsed(leaderID) {
			return domain.ErrLeaderUnavailable
		}
	}

	t := l.Team(team)
	switch l.DraftStatus.Type {
	case domain.PhaseBan:
		t.BannedLeaders = append(t.BannedLeaders, leaderID)
	case domain.PhasePick:
		t.SelectedLeaders = append(t.SelectedLeaders, leaderID)
	default:
		return fmt.Errorf("%w: unexpected phase %s", domain.ErrIllegalAction, l.DraftStatus)
	}

	if l.DraftStatus.Type == domain.PhasePick && l.PicksMade() >= l.TotalPicks() {
		l.Status = domain.LobbyStatusCompleted
	} else {
		l.DraftStatus = domain.NextPhase(l.DraftStatus, l.Rotations)
	}
	l.CurrentTeamTurn = l.DerivedTeamTurn()
	return nil
}

// timeoutEntity returns the configured default for the lobby's current
// family, or the first legal candidate when the default cannot be played.
func (s *DraftService) timeoutEntity(l *domain.Lobby, leaders []*domain.Leader) string {
	if l.Status == domain.LobbyStatusMapSelection {
		remaining := l.RemainingMapIDs()
		if slices.Contains(remaining, s.settings.DefaultMapID) {
			return s.settings.DefaultMapID
		}
		if len(remaining) > 0 {
			return remaining[0]
		}
		return ""
	}

	def := s.settings.DefaultLeaderID
	if def == domain.TimeoutLeaderID || (!l.IsLeaderUsed(def) && !l.IsLeaderAutoBanned(def)) {
		return def
	}
	for _, leader := range leaders {
		if leader.ID == domain.TimeoutLeaderID || l.IsLeaderUsed(leader.ID) || l.IsLeaderAutoBanned(leader.ID) {
			continue
		}
		return leader.ID
	}
	return ""
}

// nextTimestamp returns now in unix milliseconds, bumped past every
// timestamp already stored on the lobby so tokens never repeat.
func (s *DraftService) nextTimestamp(l *domain.Lobby) int64 {
	ts := s.clock.Now().UnixMilli()
	for _, prev := range []*int64{l.MapBanTimestamp, l.LeaderBanTimestamp} {
		if prev != nil && *prev >= ts {
			ts = *prev + 1
		}
	}
	return ts
}

// updateDraft runs fn against a fresh copy of the lobby and commits the draft
// fields with a version check, retrying when another writer got there first.
// fn returns false to leave the lobby untouched.
func (s *DraftService) updateDraft(ctx context.Context, lobbyID uuid.UUID, fn func(*domain.Lobby) (bool, error)) (*domain.Lobby, bool, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		lobby, err := s.lobbies.GetByID(ctx, lobbyID)
		if err != nil {
			return nil, false, err
		}

		changed, err := fn(lobby)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return lobby, false, nil
		}

		err = s.lobbies.UpdateDraft(ctx, lobby)
		if errors.Is(err, repository.ErrConflict) {
			s.log.Debug("Draft update conflict, retrying", zap.String("lobby_id", lobbyID.String()), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return lobby, true, nil
	}
	return nil, false, fmt.Errorf("lobby %s: %w after %d attempts", lobbyID, repository.ErrConflict, maxUpdateAttempts)
}

// afterCommit records the action, announces the new state, drops the hover
// and arms the next watchdog. Failures here never undo the committed update.
func (s *DraftService) afterCommit(ctx context.Context, lobby *domain.Lobby, action *domain.DraftAction) {
	if action != nil {
		if err := s.actions.Create(ctx, action); err != nil {
			s.log.Warn("Failed to store draft action", zap.Error(err), zap.String("lobby_id", lobby.ID.String()))
		}
		if s.recorder != nil {
			if err := s.recorder.RecordAction(ctx, action); err != nil {
				s.log.Warn("Failed to record draft action", zap.Error(err), zap.String("lobby_id", lobby.ID.String()))
			}
		}
	}

	publishLobby(s.events, s.log, lobby)
	if action != nil {
		s.clearSelection(ctx, lobby.ID)
	}

	if lobby.Status == domain.LobbyStatusCompleted {
		s.log.Info("Draft completed", zap.String("lobby_id", lobby.ID.String()))
		return
	}
	if ts := lobby.PhaseTimestamp(lobby.Status); ts != nil {
		s.arm(lobby.ID, lobby.Status, *ts)
	}
}

// clearSelection drops the hover once the entity it pointed at has been
// played.
func (s *DraftService) clearSelection(ctx context.Context, lobbyID uuid.UUID) {
	if s.selection == nil {
		return
	}
	if err := s.selection.Clear(ctx, lobbyID); err != nil {
		s.log.Warn("Failed to clear selection", zap.Error(err), zap.String("lobby_id", lobbyID.String()))
		return
	}
	publish(s.events, s.log, pubsub.EventSelectionUpdated, lobbyID.String(), &domain.CurrentSelection{LobbyID: lobbyID})
}

// arm schedules the watchdog for one phase instant.
func (s *DraftService) arm(lobbyID uuid.UUID, family domain.LobbyStatus, token int64) {
	s.scheduler.AfterFunc(s.settings.Timeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeoutDeadline)
		defer cancel()
		s.HandleTimeout(ctx, lobbyID, family, token)
	})
}
