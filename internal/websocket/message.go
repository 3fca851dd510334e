package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/service"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSubscribe      MessageType = "SUBSCRIBE"
	MessageTypeUnsubscribe    MessageType = "UNSUBSCRIBE"
	MessageTypeSetSelection   MessageType = "SET_SELECTION"
	MessageTypeClearSelection MessageType = "CLEAR_SELECTION"

	// Server to Client
	MessageTypeSnapshot         MessageType = "SNAPSHOT"
	MessageTypeUnsubscribed     MessageType = "UNSUBSCRIBED"
	MessageTypeLobbyUpdated     MessageType = "LOBBY_UPDATED"
	MessageTypeSelectionUpdated MessageType = "SELECTION_UPDATED"
	MessageTypeChatPosted       MessageType = "CHAT_POSTED"
	MessageTypeError            MessageType = "ERROR"
)

// eventTypes maps broker events onto the messages pushed to subscribers.
var eventTypes = map[string]MessageType{
	pubsub.EventLobbyUpdated:     MessageTypeLobbyUpdated,
	pubsub.EventSelectionUpdated: MessageTypeSelectionUpdated,
	pubsub.EventChatPosted:       MessageTypeChatPosted,
}

type Message struct {
	Type      MessageType     `json:"type"`
	LobbyID   string          `json:"lobbyId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, lobbyID string, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		LobbyID:   lobbyID,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

// Client to Server payloads

type SetSelectionPayload struct {
	SelectionID string `json:"selectionId"`
}

// Server to Client payloads

// SnapshotPayload is sent once after SUBSCRIBE so the client can render
// before the first update arrives. Later LOBBY_UPDATED payloads carry a
// higher lobby version.
type SnapshotPayload struct {
	Lobby     *service.LobbyView       `json:"lobby"`
	Selection *domain.CurrentSelection `json:"selection"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
