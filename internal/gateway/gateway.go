package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"socialite/backend/internal/chat"
	"socialite/backend/internal/models"
	"socialite/backend/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Inbound event names.
const (
	eventJoin        = "join"
	eventSendMessage = "sendMessage"
)

// Outbound event name.
const eventNewMessage = "newMessage"

// inboundEvent is the envelope for everything a client sends. Fields beyond
// Event are populated depending on the event type.
type inboundEvent struct {
	Event      string `json:"event"`
	UserID     uint   `json:"userId,omitempty"`
	SenderID   uint   `json:"senderId,omitempty"`
	ReceiverID uint   `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
}

// outboundEvent is the envelope for events pushed to clients.
type outboundEvent struct {
	Event   string          `json:"event"`
	Payload *models.Message `json:"payload"`
}

// Gateway accepts websocket connections, binds them to user identities, and
// routes chat messages: persist first, then push to the receiver if a live
// connection is registered. A receiver that is offline at push time gets
// nothing; the message waits in the log for a later history fetch.
type Gateway struct {
	registry  *presence.Registry
	directory *chat.Directory
	log       *chat.Log
	upgrader  websocket.Upgrader
}

func New(registry *presence.Registry, directory *chat.Directory, log *chat.Log) *Gateway {
	return &Gateway{
		registry:  registry,
		directory: directory,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and serves the connection until it closes.
// Events from one connection are processed strictly in arrival order.
func (g *Gateway) Handle(c *gin.Context) {
	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}

	cl := newClient(ws)
	go cl.writePump()
	slog.Info("websocket client connected", "connID", cl.id)

	defer func() {
		g.registry.Unregister(cl)
		cl.close()
		slog.Info("websocket client disconnected", "connID", cl.id)
	}()

	for {
		var ev inboundEvent
		if err := ws.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("websocket read ended", "connID", cl.id, "error", err)
			}
			return
		}

		switch ev.Event {
		case eventJoin:
			g.registry.Register(ev.UserID, cl)
			slog.Info("user joined chat", "userID", ev.UserID, "connID", cl.id)

		case eventSendMessage:
			if err := g.deliver(ev); err != nil {
				slog.Error("failed to handle message", "connID", cl.id, "error", err)
			}

		default:
			slog.Warn("unknown websocket event", "event", ev.Event, "connID", cl.id)
		}
	}
}

// deliver persists the message and pushes it to the receiver when online.
// Persistence is unconditional; the push is opportunistic.
func (g *Gateway) deliver(ev inboundEvent) error {
	conv, err := g.directory.GetOrCreate(ev.SenderID, ev.ReceiverID)
	if err != nil {
		return err
	}

	msg, err := g.log.Append(conv.ID, ev.SenderID, ev.ReceiverID, ev.Content)
	if err != nil {
		return err
	}

	conn, ok := g.registry.Resolve(ev.ReceiverID)
	if !ok {
		// Receiver offline; the message is stored and the push is skipped.
		return nil
	}

	data, err := json.Marshal(outboundEvent{Event: eventNewMessage, Payload: msg})
	if err != nil {
		return err
	}
	if !conn.Send(data) {
		slog.Warn("receiver send buffer full, push dropped",
			"receiverID", ev.ReceiverID, "messageID", msg.ID)
	}
	return nil
}
