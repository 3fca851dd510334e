package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const commandTimeout = 10 * time.Second

// LobbySource supplies the snapshot sent on SUBSCRIBE.
type LobbySource interface {
	GetLobby(ctx context.Context, id uuid.UUID) (*service.LobbyView, error)
}

// SelectionChannel is the hover channel clients write through.
type SelectionChannel interface {
	Get(ctx context.Context, lobbyID uuid.UUID) (*domain.CurrentSelection, error)
	Set(ctx context.Context, lobbyID uuid.UUID, selectionID string) (*domain.CurrentSelection, error)
	Clear(ctx context.Context, lobbyID uuid.UUID) error
}

// Hub forwards broker events to the clients watching each lobby. All
// subscription state is owned by the Run goroutine.
type Hub struct {
	broker     pubsub.Broker
	lobbies    LobbySource
	selections SelectionChannel

	clients     map[*Client]bool
	subscribers map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	membership chan subscription
	inspect    chan func()
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	log        *zap.Logger
}

type subscription struct {
	client  *Client
	lobbyID string
	watch   bool
	ack     chan struct{}
}

func NewHub(broker pubsub.Broker, lobbies LobbySource, selections SelectionChannel) *Hub {
	return &Hub{
		broker:      broker,
		lobbies:     lobbies,
		selections:  selections,
		clients:     make(map[*Client]bool),
		subscribers: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		membership:  make(chan subscription),
		inspect:     make(chan func()),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		log:         logger.Named("websocket"),
	}
}

// Run is the hub event loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	events := h.broker.Subscribe()
	defer h.broker.Unsubscribe(events)

	for {
		select {
		case <-h.stop:
			for client := range h.clients {
				client.close()
			}
			h.clients = make(map[*Client]bool)
			h.subscribers = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				for lobbyID := range h.subscribers {
					h.drop(lobbyID, client)
				}
				client.close()
			}

		case sub := <-h.membership:
			if sub.watch {
				if h.subscribers[sub.lobbyID] == nil {
					h.subscribers[sub.lobbyID] = make(map[*Client]bool)
				}
				h.subscribers[sub.lobbyID][sub.client] = true
			} else {
				h.drop(sub.lobbyID, sub.client)
			}
			close(sub.ack)

		case fn := <-h.inspect:
			fn()

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			h.forward(event)
		}
	}
}

// Stop closes every client and waits for Run to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Serve attaches an upgraded connection to the hub and starts its pumps.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := newClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// SubscriberCount returns how many clients watch lobbyID.
func (h *Hub) SubscriberCount(lobbyID uuid.UUID) int {
	result := make(chan int, 1)
	select {
	case h.inspect <- func() { result <- len(h.subscribers[lobbyID.String()]) }:
		return <-result
	case <-h.done:
		return 0
	}
}

func (h *Hub) drop(lobbyID string, client *Client) {
	subs := h.subscribers[lobbyID]
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.subscribers, lobbyID)
	}
}

func (h *Hub) forward(event pubsub.Event) {
	subs := h.subscribers[event.LobbyID]
	if len(subs) == 0 {
		return
	}

	msgType, ok := eventTypes[event.Type]
	if !ok {
		h.log.Debug("Ignoring unknown event", zap.String("type", event.Type))
		return
	}
	data, err := json.Marshal(&Message{
		Type:      msgType,
		LobbyID:   event.LobbyID,
		Payload:   event.Payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		h.log.Error("Failed to marshal event", zap.Error(err))
		return
	}

	for client := range subs {
		client.enqueue(data)
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// updateMembership hands a subscription change to the event loop and waits
// until it is applied. It reports false once the hub has stopped.
func (h *Hub) updateMembership(c *Client, lobbyID string, watch bool) bool {
	sub := subscription{client: c, lobbyID: lobbyID, watch: watch, ack: make(chan struct{})}
	select {
	case h.membership <- sub:
	case <-h.done:
		return false
	}
	<-sub.ack
	return true
}

func (h *Hub) handleMessage(c *Client, msg *Message) {
	lobbyID, err := uuid.Parse(msg.LobbyID)
	if err != nil {
		c.sendError(msg.LobbyID, "INVALID_LOBBY_ID", "lobbyId must be a UUID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case MessageTypeSubscribe:
		h.subscribe(ctx, c, lobbyID)

	case MessageTypeUnsubscribe:
		if h.updateMembership(c, lobbyID.String(), false) {
			c.sendMessage(MessageTypeUnsubscribed, lobbyID.String(), nil)
		}

	case MessageTypeSetSelection:
		var payload SetSelectionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(msg.LobbyID, "INVALID_PAYLOAD", "invalid set selection payload")
			return
		}
		if _, err := h.selections.Set(ctx, lobbyID, payload.SelectionID); err != nil {
			h.replyError(c, msg.LobbyID, err)
		}

	case MessageTypeClearSelection:
		if err := h.selections.Clear(ctx, lobbyID); err != nil {
			h.replyError(c, msg.LobbyID, err)
		}

	default:
		c.sendError(msg.LobbyID, "UNKNOWN_MESSAGE", "unknown message type "+string(msg.Type))
	}
}

func (h *Hub) subscribe(ctx context.Context, c *Client, lobbyID uuid.UUID) {
	// Subscribe before reading the snapshot so no update falls in between.
	if !h.updateMembership(c, lobbyID.String(), true) {
		return
	}

	lobby, err := h.lobbies.GetLobby(ctx, lobbyID)
	if err != nil {
		h.updateMembership(c, lobbyID.String(), false)
		h.replyError(c, lobbyID.String(), err)
		return
	}
	selection, err := h.selections.Get(ctx, lobbyID)
	if err != nil {
		h.replyError(c, lobbyID.String(), err)
		return
	}

	c.sendMessage(MessageTypeSnapshot, lobbyID.String(), SnapshotPayload{
		Lobby:     lobby,
		Selection: selection,
	})
}

func (h *Hub) replyError(c *Client, lobbyID string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.sendError(lobbyID, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrPreconditionFailed), errors.Is(err, domain.ErrIllegalAction):
		c.sendError(lobbyID, "INVALID_REQUEST", err.Error())
	default:
		h.log.Error("Websocket command failed", zap.Error(err), zap.String("lobby_id", lobbyID))
		c.sendError(lobbyID, "INTERNAL", "internal error")
	}
}
