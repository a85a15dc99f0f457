package gateway

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"socialite/backend/internal/chat"
	"socialite/backend/internal/database"
	"socialite/backend/internal/models"
	"socialite/backend/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	srv       *httptest.Server
	registry  *presence.Registry
	directory *chat.Directory
	log       *chat.Log
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s/test.db?_busy_timeout=5000", t.TempDir())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	registry := presence.NewRegistry()
	directory := chat.NewDirectory(db)
	messageLog := chat.NewLog(db)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", New(registry, directory, messageLog).Handle)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, registry: registry, directory: directory, log: messageLog}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) join(t *testing.T, conn *websocket.Conn, userID uint) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(inboundEvent{Event: eventJoin, UserID: userID}))
	require.Eventually(t, func() bool {
		_, ok := e.registry.Resolve(userID)
		return ok
	}, 2*time.Second, 5*time.Millisecond, "user %d never came online", userID)
}

func readEvent(t *testing.T, conn *websocket.Conn) outboundEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev outboundEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestMessageRoundtrip(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t)
	bob := env.dial(t)
	env.join(t, alice, 1)
	env.join(t, bob, 2)

	require.NoError(t, alice.WriteJSON(inboundEvent{
		Event:      eventSendMessage,
		SenderID:   1,
		ReceiverID: 2,
		Content:    "hello",
	}))

	ev := readEvent(t, bob)
	assert.Equal(t, eventNewMessage, ev.Event)
	require.NotNil(t, ev.Payload)
	assert.Equal(t, uint(1), ev.Payload.SenderID)
	assert.Equal(t, uint(2), ev.Payload.ReceiverID)
	assert.Equal(t, "hello", ev.Payload.Content)
	assert.NotZero(t, ev.Payload.ConversationID)

	// The message is persisted, not just pushed.
	conv, err := env.directory.Lookup(1, 2)
	require.NoError(t, err)
	msgs, err := env.log.History(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestSendOrderPreservedPerConnection(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t)
	bob := env.dial(t)
	env.join(t, alice, 1)
	env.join(t, bob, 2)

	for _, content := range []string{"m1", "m2", "m3"} {
		require.NoError(t, alice.WriteJSON(inboundEvent{
			Event:      eventSendMessage,
			SenderID:   1,
			ReceiverID: 2,
			Content:    content,
		}))
	}

	for _, want := range []string{"m1", "m2", "m3"} {
		ev := readEvent(t, bob)
		require.NotNil(t, ev.Payload)
		assert.Equal(t, want, ev.Payload.Content)
	}
}

func TestOfflineReceiverStillPersists(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t)
	env.join(t, alice, 1)

	require.NoError(t, alice.WriteJSON(inboundEvent{
		Event:      eventSendMessage,
		SenderID:   1,
		ReceiverID: 42,
		Content:    "are you there?",
	}))

	var msgs []models.Message
	require.Eventually(t, func() bool {
		conv, err := env.directory.Lookup(1, 42)
		if err != nil {
			return false
		}
		msgs, err = env.log.History(conv.ID)
		return err == nil && len(msgs) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "are you there?", msgs[0].Content)

	// No echo and no delivery receipt for the sender.
	require.NoError(t, alice.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var ev outboundEvent
	assert.Error(t, alice.ReadJSON(&ev))
}

func TestLatestConnectionReceivesPushes(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t)
	env.join(t, alice, 1)

	bobOld := env.dial(t)
	env.join(t, bobOld, 2)
	oldConn, ok := env.registry.Resolve(2)
	require.True(t, ok)

	bobNew := env.dial(t)
	require.NoError(t, bobNew.WriteJSON(inboundEvent{Event: eventJoin, UserID: 2}))
	require.Eventually(t, func() bool {
		c, ok := env.registry.Resolve(2)
		return ok && c.ID() != oldConn.ID()
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, alice.WriteJSON(inboundEvent{
		Event:      eventSendMessage,
		SenderID:   1,
		ReceiverID: 2,
		Content:    "ping",
	}))

	ev := readEvent(t, bobNew)
	require.NotNil(t, ev.Payload)
	assert.Equal(t, "ping", ev.Payload.Content)

	// The superseded connection stays open but is no longer routed to.
	require.NoError(t, bobOld.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stale outboundEvent
	assert.Error(t, bobOld.ReadJSON(&stale))
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	// A sender can resolve a connection just before its owner disconnects;
	// the late push must be dropped silently, not take down the process.
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- ws
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	cl := newClient(<-conns)
	go cl.writePump()

	require.True(t, cl.Send([]byte(`{"event":"newMessage"}`)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cl.Send([]byte(`{"event":"newMessage"}`))
			}
		}()
	}

	cl.close()
	cl.close() // closing twice is a no-op
	wg.Wait()

	assert.False(t, cl.Send([]byte(`{"event":"newMessage"}`)))
}

func TestDisconnectUnregistersPresence(t *testing.T) {
	env := newTestEnv(t)

	conn := env.dial(t)
	env.join(t, conn, 7)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		_, ok := env.registry.Resolve(7)
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
}
