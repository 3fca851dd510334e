package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LobbyStatus is the lifecycle stage of a draft session.
type LobbyStatus string

const (
	LobbyStatusLobby           LobbyStatus = "LOBBY"
	LobbyStatusMapSelection    LobbyStatus = "MAP_SELECTION"
	LobbyStatusLeaderSelection LobbyStatus = "LEADER_SELECTION"
	LobbyStatusCompleted       LobbyStatus = "COMPLETED"
)

var statusOrder = map[LobbyStatus]int{
	LobbyStatusLobby:           0,
	LobbyStatusMapSelection:    1,
	LobbyStatusLeaderSelection: 2,
	LobbyStatusCompleted:       3,
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
// Statuses never regress.
func (s LobbyStatus) CanAdvanceTo(next LobbyStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// TeamNumber identifies one of the two drafting teams.
type TeamNumber int

const (
	Team1 TeamNumber = 1
	Team2 TeamNumber = 2
)

// Valid reports whether t is team 1 or team 2.
func (t TeamNumber) Valid() bool {
	return t == Team1 || t == Team2
}

// Other returns the opposing team.
func (t TeamNumber) Other() TeamNumber {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Player is a participant identified by a client-generated id and a pseudo.
type Player struct {
	ID     string `json:"id"`
	Pseudo string `json:"pseudo"`
}

// Team holds one side's roster and its draft history.
type Team struct {
	Name            string                      `json:"name" gorm:"not null"`
	SelectedLeaders datatypes.JSONSlice[string] `json:"selectedLeaders"`
	BannedLeaders   datatypes.JSONSlice[string] `json:"bannedLeaders"`
	BannedMaps      datatypes.JSONSlice[string] `json:"bannedMaps"`
	Players         datatypes.JSONSlice[Player] `json:"players"`
	IsReady         bool                        `json:"isReady" gorm:"not null;default:false"`
}

func newTeam(name string) Team {
	return Team{
		Name:            name,
		SelectedLeaders: datatypes.JSONSlice[string]{},
		BannedLeaders:   datatypes.JSONSlice[string]{},
		BannedMaps:      datatypes.JSONSlice[string]{},
		Players:         datatypes.JSONSlice[Player]{},
	}
}

// HasPlayer reports whether the roster contains playerID.
func (t *Team) HasPlayer(playerID string) bool {
	return slices.ContainsFunc(t.Players, func(p Player) bool { return p.ID == playerID })
}

// Rotations are the four configured rotation sizes that drive the schedule.
type Rotations struct {
	BansFirst   int `json:"numberOfBansFirstRotation" gorm:"column:number_of_bans_first_rotation;not null"`
	BansSecond  int `json:"numberOfBansSecondRotation" gorm:"column:number_of_bans_second_rotation;not null"`
	PicksFirst  int `json:"numberOfPicksFirstRotation" gorm:"column:number_of_picks_first_rotation;not null"`
	PicksSecond int `json:"numberOfPicksSecondRotation" gorm:"column:number_of_picks_second_rotation;not null"`
}

// Default rotation sizes used when a lobby is created without explicit values.
var DefaultRotations = Rotations{
	BansFirst:   10,
	BansSecond:  4,
	PicksFirst:  4,
	PicksSecond: 4,
}

// TotalBans is the number of leader bans across both rotations.
func (r Rotations) TotalBans() int { return r.BansFirst + r.BansSecond }

// TotalPicks is the number of leader picks across both rotations.
func (r Rotations) TotalPicks() int { return r.PicksFirst + r.PicksSecond }

// Validate checks the rotation sizes. Bans and picks alternate between the
// teams, so each total has to be even.
func (r Rotations) Validate() error {
	if r.BansFirst < 1 || r.BansSecond < 1 || r.PicksFirst < 1 || r.PicksSecond < 1 {
		return ErrInvalidRotations
	}
	if r.TotalBans()%2 != 0 || r.TotalPicks()%2 != 0 {
		return ErrInvalidRotations
	}
	return nil
}

// Lobby is one draft session. Draft fields are written only by the draft
// engine; roster fields only by the membership service.
type Lobby struct {
	ID     uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Status LobbyStatus `json:"status" gorm:"type:varchar(20);not null;default:'LOBBY'"`

	Team1     Team                        `json:"team1" gorm:"embedded;embeddedPrefix:team1_"`
	Team2     Team                        `json:"team2" gorm:"embedded;embeddedPrefix:team2_"`
	Observers datatypes.JSONSlice[Player] `json:"observers"`

	AutoBannedLeaderIDs datatypes.JSONSlice[string] `json:"autoBannedLeaderIds"`
	Rotations           `gorm:"embedded"`

	WithMapDraft  bool                        `json:"withMapDraft" gorm:"not null;default:false"`
	MapIDs        datatypes.JSONSlice[string] `json:"mapIds"`
	BannedMapIDs  datatypes.JSONSlice[string] `json:"bannedMapIds"`
	SelectedMapID *string                     `json:"selectedMapId"`

	DraftStatus     Phase      `json:"draftStatus" gorm:"embedded;embeddedPrefix:draft_status_"`
	CurrentTeamTurn TeamNumber `json:"currentTeamTurn" gorm:"not null;default:1"`

	// Unix milliseconds at which the current phase's timeout window opened.
	MapBanTimestamp    *int64 `json:"mapBanTimestamp"`
	LeaderBanTimestamp *int64 `json:"leaderBanTimestamp"`

	Version   int64     `json:"version" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Lobby) TableName() string {
	return "lobbies"
}

// LobbyConfig is the static part of a lobby fixed at creation.
type LobbyConfig struct {
	Team1Name           string
	Team2Name           string
	Rotations           Rotations
	MapIDs              []string
	AutoBannedLeaderIDs []string
	WithMapDraft        bool
}

// NewLobby builds a lobby in the LOBBY status with its initial draft pointer.
func NewLobby(id uuid.UUID, cfg LobbyConfig) *Lobby {
	l := &Lobby{
		ID:                  id,
		Status:              LobbyStatusLobby,
		Team1:               newTeam(cfg.Team1Name),
		Team2:               newTeam(cfg.Team2Name),
		Observers:           datatypes.JSONSlice[Player]{},
		AutoBannedLeaderIDs: append(datatypes.JSONSlice[string]{}, cfg.AutoBannedLeaderIDs...),
		Rotations:           cfg.Rotations,
		WithMapDraft:        cfg.WithMapDraft,
		MapIDs:              append(datatypes.JSONSlice[string]{}, cfg.MapIDs...),
		BannedMapIDs:        datatypes.JSONSlice[string]{},
	}
	if cfg.WithMapDraft {
		l.DraftStatus = Phase{Type: PhaseMapBan, Index: 1}
	} else {
		l.DraftStatus = Phase{Type: PhaseBan, Index: 1}
	}
	l.CurrentTeamTurn = l.DerivedTeamTurn()
	return l
}

// Team returns a pointer to the given side.
func (l *Lobby) Team(n TeamNumber) *Team {
	if n == Team2 {
		return &l.Team2
	}
	return &l.Team1
}

// DerivedTeamTurn computes whose turn it is from DraftStatus. CurrentTeamTurn
// is a cached copy of this value.
func (l *Lobby) DerivedTeamTurn() TeamNumber {
	if l.DraftStatus.Type == PhaseMapBan {
		return MapBanTeam(len(l.BannedMapIDs))
	}
	return TeamForPhase(l.DraftStatus, l.Rotations)
}

// PicksMade counts leader picks made by both teams.
func (l *Lobby) PicksMade() int {
	return len(l.Team1.SelectedLeaders) + len(l.Team2.SelectedLeaders)
}

// IsLeaderUsed reports whether a leader already sits in any ban or pick list.
func (l *Lobby) IsLeaderUsed(leaderID string) bool {
	return slices.Contains(l.Team1.BannedLeaders, leaderID) ||
		slices.Contains(l.Team2.BannedLeaders, leaderID) ||
		slices.Contains(l.Team1.SelectedLeaders, leaderID) ||
		slices.Contains(l.Team2.SelectedLeaders, leaderID)
}

// IsLeaderAutoBanned reports whether a leader was excluded at creation.
func (l *Lobby) IsLeaderAutoBanned(leaderID string) bool {
	return slices.Contains(l.AutoBannedLeaderIDs, leaderID)
}

// RemainingMapIDs returns the pool maps not yet banned, in pool order.
func (l *Lobby) RemainingMapIDs() []string {
	remaining := make([]string, 0, len(l.MapIDs))
	for _, id := range l.MapIDs {
		if !slices.Contains(l.BannedMapIDs, id) {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// PhaseTimestamp returns the fencing timestamp for a status family.
func (l *Lobby) PhaseTimestamp(family LobbyStatus) *int64 {
	switch family {
	case LobbyStatusMapSelection:
		return l.MapBanTimestamp
	case LobbyStatusLeaderSelection:
		return l.LeaderBanTimestamp
	}
	return nil
}

// BothTeamsReady reports whether both teams flagged themselves ready.
func (l *Lobby) BothTeamsReady() bool {
	return l.Team1.IsReady && l.Team2.IsReady
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (l *Lobby) Clone() *Lobby {
	c := *l
	c.Team1 = l.Team1.clone()
	c.Team2 = l.Team2.clone()
	c.Observers = slices.Clone(l.Observers)
	c.AutoBannedLeaderIDs = slices.Clone(l.AutoBannedLeaderIDs)
	c.MapIDs = slices.Clone(l.MapIDs)
	c.BannedMapIDs = slices.Clone(l.BannedMapIDs)
	if l.SelectedMapID != nil {
		v := *l.SelectedMapID
		c.SelectedMapID = &v
	}
	if l.MapBanTimestamp != nil {
		v := *l.MapBanTimestamp
		c.MapBanTimestamp = &v
	}
	if l.LeaderBanTimestamp != nil {
		v := *l.LeaderBanTimestamp
		c.LeaderBanTimestamp = &v
	}
	return &c
}

func (t Team) clone() Team {
	t.SelectedLeaders = slices.Clone(t.SelectedLeaders)
	t.BannedLeaders = slices.Clone(t.BannedLeaders)
	t.BannedMaps = slices.Clone(t.BannedMaps)
	t.Players = slices.Clone(t.Players)
	return t
}
