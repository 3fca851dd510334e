package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/websocket"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
)

// frame is one decoded server message or the read error that ended the
// stream.
type frame struct {
	msg *websocket.Message
	err error
}

// WSClient speaks the lobby push protocol against a test server. Reads run on
// a background goroutine; the Expect helpers consume them in order.
type WSClient struct {
	t         *testing.T
	conn      *gorillaWS.Conn
	inbox     chan frame
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewWSClient dials url and closes the connection when the test ends.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}

	c := &WSClient{t: t, conn: conn, inbox: make(chan frame, 128)}
	go c.receive()
	t.Cleanup(c.Close)
	return c
}

func (c *WSClient) receive() {
	defer close(c.inbox)
	for {
		var msg websocket.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				continue
			}
			select {
			case c.inbox <- frame{err: err}:
			default:
			}
			return
		}
		c.inbox <- frame{msg: &msg}
	}
}

// Close sends a normal close frame and drops the connection.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
	})
}

func (c *WSClient) send(msgType websocket.MessageType, lobbyID uuid.UUID, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, lobbyID.String(), payload)
	if err != nil {
		c.t.Fatalf("build %s: %v", msgType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("send %s: %v", msgType, err)
	}
}

// Subscribe starts watching a lobby and returns the snapshot
func (c *WSClient) Subscribe(lobbyID uuid.UUID, timeout time.Duration) *websocket.SnapshotPayload {
	c.t.Helper()

	c.send(websocket.MessageTypeSubscribe, lobbyID, nil)
	var payload websocket.SnapshotPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeSnapshot, timeout), &payload)
	return &payload
}

// TrySubscribe sends SUBSCRIBE without waiting for the answer
func (c *WSClient) TrySubscribe(lobbyID uuid.UUID) {
	c.send(websocket.MessageTypeSubscribe, lobbyID, nil)
}

func (c *WSClient) Unsubscribe(lobbyID uuid.UUID) {
	c.send(websocket.MessageTypeUnsubscribe, lobbyID, nil)
}

func (c *WSClient) SetSelection(lobbyID uuid.UUID, selectionID string) {
	c.send(websocket.MessageTypeSetSelection, lobbyID, websocket.SetSelectionPayload{SelectionID: selectionID})
}

func (c *WSClient) ClearSelection(lobbyID uuid.UUID) {
	c.send(websocket.MessageTypeClearSelection, lobbyID, nil)
}

// ExpectMessage skips messages of other types until one of msgType arrives.
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case f, ok := <-c.inbox:
			switch {
			case !ok:
				c.t.Fatalf("connection closed while waiting for %s", msgType)
			case f.err != nil:
				c.t.Fatalf("read failed while waiting for %s: %v", msgType, f.err)
			case f.msg.Type == msgType:
				return f.msg
			}
		case <-timer.C:
			c.t.Fatalf("no %s within %s", msgType, timeout)
		}
	}
}

// ExpectError waits for an ERROR message and returns its payload.
func (c *WSClient) ExpectError(timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	var payload websocket.ErrorPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeError, timeout), &payload)
	return &payload
}

// ExpectNoMessage fails if anything arrives within timeout.
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case f, ok := <-c.inbox:
		if ok && f.msg != nil {
			c.t.Fatalf("unexpected %s message", f.msg.Type)
		}
	case <-time.After(timeout):
	}
}

func (c *WSClient) decode(msg *websocket.Message, v interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.t.Fatalf("decode %s payload: %v", msg.Type, err)
	}
}
