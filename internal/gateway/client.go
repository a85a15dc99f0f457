package gateway

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBuffer is the per-client outbound queue depth. A client that falls
// this far behind starts losing pushes; delivery is best-effort anyway.
const sendBuffer = 64

// client wraps one websocket connection. Outbound events go through a
// buffered channel drained by a single writer goroutine, so pushes from the
// registry never block and never interleave writes on the socket.
type client struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(ws *websocket.Conn) *client {
	return &client{
		id:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// ID identifies this connection; the presence registry compares IDs to tell
// a stale disconnect from a live registration.
func (c *client) ID() string {
	return c.id
}

// Send queues an event for the writer goroutine without blocking. It reports
// false if the client's buffer is full or the client is closed. The mutex
// keeps Send and close mutually exclusive: a push that races a disconnect is
// dropped, never sent on a closed channel.
func (c *client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writePump drains the send channel onto the socket. It exits when close
// shuts the channel.
func (c *client) writePump() {
	for data := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("websocket write failed", "connID", c.id, "error", err)
			return
		}
	}
}

// close shuts down the writer and the socket. Safe to call more than once
// and safe against concurrent Send.
func (c *client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.ws.Close()
}
