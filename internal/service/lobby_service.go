package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
)

type LobbyService struct {
	lobbyRepo   repository.LobbyRepository
	catalogRepo repository.CatalogRepository
	presetRepo  repository.PresetRepository
	draft       *DraftService
}

func NewLobbyService(
	lobbyRepo repository.LobbyRepository,
	catalogRepo repository.CatalogRepository,
	presetRepo repository.PresetRepository,
	draft *DraftService,
) *LobbyService {
	return &LobbyService{
		lobbyRepo:   lobbyRepo,
		catalogRepo: catalogRepo,
		presetRepo:  presetRepo,
		draft:       draft,
	}
}

// CreateLobbyInput configures a new lobby. Nil fields fall back to the preset
// when one is given, then to the defaults: standard rotations, every catalog
// map, no auto-bans.
type CreateLobbyInput struct {
	Team1Name           string
	Team2Name           string
	Rotations           *domain.Rotations
	MapIDs              []string
	AutoBannedLeaderIDs []string
	WithMapDraft        bool
	PresetID            *uuid.UUID
}

// LobbyView is a lobby plus the time left on the current phase.
type LobbyView struct {
	*domain.Lobby
	TimerRemainingMs int64 `json:"timerRemainingMs"`
}

func (s *LobbyService) CreateLobby(ctx context.Context, input CreateLobbyInput) (*domain.Lobby, error) {
	team1 := strings.TrimSpace(input.Team1Name)
	team2 := strings.TrimSpace(input.Team2Name)
	if team1 == "" || team2 == "" {
		return nil, fmt.Errorf("%w: both team names are required", domain.ErrInvalidLobby)
	}

	rotations := domain.DefaultRotations
	mapIDs := input.MapIDs
	autoBans := input.AutoBannedLeaderIDs

	if input.PresetID != nil {
		preset, err := s.presetRepo.GetByID(ctx, *input.PresetID)
		if err != nil {
			return nil, err
		}
		rotations = preset.Rotations
		if len(mapIDs) == 0 {
			mapIDs = preset.MapIDs
		}
		if autoBans == nil {
			autoBans = preset.AutoBannedLeaderIDs
		}
	}
	if input.Rotations != nil {
		rotations = *input.Rotations
	}
	if err := rotations.Validate(); err != nil {
		return nil, err
	}

	mapIDs, err := s.resolveMapPool(ctx, mapIDs)
	if err != nil {
		return nil, err
	}
	if input.WithMapDraft && len(mapIDs) < 2 {
		return nil, fmt.Errorf("%w: a map draft needs at least two maps", domain.ErrInvalidLobby)
	}

	if err := s.checkLeaderPool(ctx, autoBans, rotations); err != nil {
		return nil, err
	}

	lobby := domain.NewLobby(uuid.New(), domain.LobbyConfig{
		Team1Name:           team1,
		Team2Name:           team2,
		Rotations:           rotations,
		MapIDs:              mapIDs,
		AutoBannedLeaderIDs: autoBans,
		WithMapDraft:        input.WithMapDraft,
	})

	if err := s.lobbyRepo.Create(ctx, lobby); err != nil {
		return nil, err
	}
	return lobby, nil
}

func (s *LobbyService) GetLobby(ctx context.Context, id uuid.UUID) (*LobbyView, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LobbyView{
		Lobby:            lobby,
		TimerRemainingMs: s.draft.TimerRemaining(lobby).Milliseconds(),
	}, nil
}

// resolveMapPool checks every id against the catalog, or returns the whole
// catalog when ids is empty.
func (s *LobbyService) resolveMapPool(ctx context.Context, ids []string) ([]string, error) {
	maps, err := s.catalogRepo.GetMaps(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(maps))
	for _, m := range maps {
		known[m.ID] = true
	}

	if len(ids) == 0 {
		pool := make([]string, 0, len(maps))
		for _, m := range maps {
			pool = append(pool, m.ID)
		}
		return pool, nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("%w: unknown map %q", domain.ErrInvalidLobby, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: map %q listed twice", domain.ErrInvalidLobby, id)
		}
		seen[id] = true
	}
	return slices.Clone(ids), nil
}

// checkLeaderPool makes sure every auto-ban is a known leader and that enough
// leaders remain for every ban and pick of the draft.
func (s *LobbyService) checkLeaderPool(ctx context.Context, autoBans []string, r domain.Rotations) error {
	leaders, err := s.catalogRepo.GetLeaders(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(leaders))
	for _, l := range leaders {
		known[l.ID] = true
	}
	for _, id := range autoBans {
		if !known[id] {
			return fmt.Errorf("%w: unknown leader %q", domain.ErrInvalidLobby, id)
		}
	}

	available := 0
	for _, l := range leaders {
		if l.ID != domain.TimeoutLeaderID && !slices.Contains(autoBans, l.ID) {
			available++
		}
	}
	if need := r.TotalBans() + r.TotalPicks(); available < need {
		return fmt.Errorf("%w: %d leaders available, draft needs %d", domain.ErrInvalidLobby, available, need)
	}
	return nil
}
