package pubsub

import (
	"encoding/json"
	"sync"

	"github.com/dom/civ-draft/internal/logger"
	"go.uber.org/zap"
)

// Event types
const (
	EventLobbyUpdated     = "lobby.updated"
	EventSelectionUpdated = "selection.updated"
	EventChatPosted       = "chat.posted"
)

// Event is one change notification scoped to a lobby.
type Event struct {
	Type    string          `json:"type"`
	LobbyID string          `json:"lobbyId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an Event.
func NewEvent(eventType, lobbyID string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, LobbyID: lobbyID, Payload: data}, nil
}

// Publisher is what the services need to announce changes.
type Publisher interface {
	Publish(Event)
}

// Broker fans events out to in-process subscribers, optionally through an
// external transport.
type Broker interface {
	Publisher
	Subscribe() chan Event
	Unsubscribe(chan Event)
	Close()
}

// fanout holds local subscriber channels. Slow subscribers drop events.
type fanout struct {
	mu          sync.RWMutex
	subscribers []chan Event
	buffer      int
	log         *zap.Logger
}

func (f *fanout) subscribe() chan Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Event, f.buffer)
	f.subscribers = append(f.subscribers, ch)
	f.log.Debug("Subscriber added", zap.Int("total", len(f.subscribers)))
	return ch
}

func (f *fanout) unsubscribe(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, sub := range f.subscribers {
		if sub == ch {
			close(ch)
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			break
		}
	}
}

func (f *fanout) deliver(event Event) {
	f.mu.RLock()
	subs := make([]chan Event, len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			f.log.Warn("Skipping slow subscriber", zap.String("type", event.Type), zap.String("lobby_id", event.LobbyID))
		}
	}
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subscribers {
		close(ch)
	}
	f.subscribers = nil
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// PubSub is the in-process broker.
type PubSub struct {
	fanout
}

// New creates an in-process broker.
func New() *PubSub {
	return &PubSub{fanout: fanout{buffer: 64, log: logger.Named("pubsub")}}
}

func (ps *PubSub) Publish(event Event) {
	ps.deliver(event)
}

func (ps *PubSub) Subscribe() chan Event {
	return ps.subscribe()
}

func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.unsubscribe(ch)
}

func (ps *PubSub) Close() {
	ps.closeAll()
}

// SubscriberCount returns the number of active local subscribers.
func (ps *PubSub) SubscriberCount() int {
	return ps.count()
}
