package domain

import (
	"time"

	"github.com/google/uuid"
)

// CurrentSelection is the entity a team is hovering before it commits. It is
// kept outside the lobby row so hover traffic never touches draft state.
type CurrentSelection struct {
	LobbyID     uuid.UUID `json:"lobbyId" gorm:"type:uuid;primaryKey"`
	SelectionID string    `json:"selectionId" gorm:"not null"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (CurrentSelection) TableName() string {
	return "current_selections"
}
