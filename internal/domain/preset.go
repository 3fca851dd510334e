package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Preset is a named lobby template: a map pool, an auto-ban list and
// rotation sizes that CreateLobby can start from.
type Preset struct {
	ID                  uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name                string                      `json:"name" gorm:"uniqueIndex;not null"`
	Label               string                      `json:"label"`
	MapIDs              datatypes.JSONSlice[string] `json:"mapIds"`
	AutoBannedLeaderIDs datatypes.JSONSlice[string] `json:"autoBannedLeaderIds"`

	Rotations `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Preset) TableName() string {
	return "presets"
}
