package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PhaseType is the kind of action a phase expects.
type PhaseType string

const (
	PhaseMapBan PhaseType = "MAPBAN"
	PhaseBan    PhaseType = "BAN"
	PhasePick   PhaseType = "PICK"
)

// Phase is one discrete turn of the draft. Index is 1-based within its type.
type Phase struct {
	Type  PhaseType `json:"type" gorm:"type:varchar(10);not null"`
	Index int       `json:"index" gorm:"not null"`
}

func (p Phase) String() string {
	return fmt.Sprintf("%s%d", p.Type, p.Index)
}

// NextPhase returns the leader phase that follows current.
//
//	BAN(1..bf) -> PICK(1..pf) -> BAN(bf+1..bf+bs) -> PICK(pf+1..pf+ps)
//
// Map bans do not go through NextPhase; see NextMapPhase.
func NextPhase(current Phase, r Rotations) Phase {
	switch current.Type {
	case PhaseBan:
		switch current.Index {
		case r.BansFirst:
			return Phase{Type: PhasePick, Index: 1}
		case r.BansFirst + r.BansSecond:
			return Phase{Type: PhasePick, Index: r.PicksFirst + 1}
		}
	case PhasePick:
		if current.Index == r.PicksFirst {
			return Phase{Type: PhaseBan, Index: r.BansFirst + 1}
		}
	}
	return Phase{Type: current.Type, Index: current.Index + 1}
}

// NextMapPhase returns the phase after a map ban. bannedCount includes the
// ban just made; once a single map remains the leader draft opens at BAN1.
func NextMapPhase(current Phase, bannedCount, poolSize int) (next Phase, last bool) {
	if bannedCount >= poolSize-1 {
		return Phase{Type: PhaseBan, Index: 1}, true
	}
	return Phase{Type: PhaseMapBan, Index: current.Index + 1}, false
}

// TeamForPhase returns the team acting in a leader phase.
//
// Bans alternate starting with team 1; the second ban rotation flips parity.
// Picks follow a 1-2-2-1 snake inside each rotation. The first rotation opens
// with team 1 and the second with whichever team did not make the last pick
// of the first rotation, which yields team 1 on picks {1,4,6,7} of a 4+4 draft.
func TeamForPhase(p Phase, r Rotations) TeamNumber {
	switch p.Type {
	case PhaseBan:
		odd := p.Index%2 == 1
		if p.Index > r.BansFirst {
			odd = !odd
		}
		if odd {
			return Team1
		}
		return Team2
	case PhasePick:
		if p.Index <= r.PicksFirst {
			return snakeTeam(Team1, p.Index-1)
		}
		lastOfFirst := snakeTeam(Team1, r.PicksFirst-1)
		return snakeTeam(lastOfFirst.Other(), p.Index-r.PicksFirst-1)
	case PhaseMapBan:
		return MapBanTeam(p.Index - 1)
	}
	return Team1
}

func snakeTeam(start TeamNumber, position int) TeamNumber {
	switch position % 4 {
	case 0, 3:
		return start
	default:
		return start.Other()
	}
}

// MapBanTeam returns the team owning the next map ban when bannedCount
// bans have already been recorded across both teams.
func MapBanTeam(bannedCount int) TeamNumber {
	if bannedCount%2 == 0 {
		return Team1
	}
	return Team2
}

// FamilyFor returns the lobby status a phase type belongs to.
func FamilyFor(t PhaseType) LobbyStatus {
	if t == PhaseMapBan {
		return LobbyStatusMapSelection
	}
	return LobbyStatusLeaderSelection
}

// DraftAction is an append-only record of one applied ban or pick.
type DraftAction struct {
	ID       uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	LobbyID  uuid.UUID   `json:"lobbyId" gorm:"type:uuid;index;not null"`
	Family   LobbyStatus `json:"family" gorm:"type:varchar(20);not null"`
	Phase    Phase       `json:"phase" gorm:"embedded;embeddedPrefix:phase_"`
	Team     TeamNumber  `json:"team" gorm:"not null"`
	EntityID string      `json:"entityId" gorm:"not null"`
	Auto     bool        `json:"auto" gorm:"not null;default:false"`
	ActedAt  time.Time   `json:"actedAt" gorm:"index"`
}

// TableName returns the table name for GORM
func (DraftAction) TableName() string {
	return "draft_actions"
}
