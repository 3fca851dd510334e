package domain

import (
	"time"

	"gorm.io/datatypes"
)

// TimeoutLeaderID is the placeholder leader recorded when a turn times out.
// It may appear in the ban lists any number of times.
const TimeoutLeaderID = "TIMEOUT"

type Leader struct {
	ID           string                      `json:"id" gorm:"primaryKey"` // e.g., "SALADIN_ARABIA"
	Name         string                      `json:"name" gorm:"not null"` // Display name
	Civilization string                      `json:"civilization"`         // e.g., "Arabia"
	Filters      datatypes.JSONSlice[string] `json:"filters"`              // ["science", "religion"]
	ImageName    string                      `json:"imageName"`
	LastSyncedAt time.Time                   `json:"lastSyncedAt"`
}

// TableName returns the table name for GORM
func (Leader) TableName() string {
	return "leaders"
}

type Map struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	ImageName    string    `json:"imageName"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// TableName returns the table name for GORM
func (Map) TableName() string {
	return "maps"
}
