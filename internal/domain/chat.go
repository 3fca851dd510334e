package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat limits
const (
	MaxChatMessageLength = 500
	DefaultChatLimit     = 50
	MaxChatLimit         = 200
)

// ChatMessage is one append-only line of lobby chat.
type ChatMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	LobbyID   uuid.UUID `json:"lobbyId" gorm:"type:uuid;index:idx_chat_lobby_created;not null"`
	Pseudo    string    `json:"pseudo" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_chat_lobby_created"`
}

// TableName returns the table name for GORM
func (ChatMessage) TableName() string {
	return "chat_messages"
}
