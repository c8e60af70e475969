package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplead/shoplead_server/internal/pkg/pubsub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// connect 启动一个把连接注册到 hub 的测试服务并拨号
func connect(t *testing.T, hub *Hub, userID int64) (*websocket.Conn, func()) {
	t.Helper()
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{UserID: userID, Conn: conn}
		hub.Register(client)
		<-done
		hub.Unregister(client)
		conn.Close()
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, time.Second, 10*time.Millisecond)
	return conn, func() {
		conn.Close()
		close(done)
		server.Close()
	}
}

func TestHub_Empty(t *testing.T) {
	hub := NewHub()

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.IsOnline(123))
	assert.NoError(t, hub.SendToUser(123, &Message{Type: "test"}))
	assert.NoError(t, hub.SendProgress(&pubsub.ProgressMessage{UserID: 123, Step: pubsub.StepDone}))
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	_, closeA := connect(t, hub, 100)
	_, closeB := connect(t, hub, 100)

	assert.Equal(t, 2, hub.ConnectionCount())

	closeA()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, hub.IsOnline(100))

	closeB()
	require.Eventually(t, func() bool { return !hub.IsOnline(100) }, time.Second, 10*time.Millisecond)
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	conn, cleanup := connect(t, hub, 200)
	defer cleanup()

	err := hub.SendToUser(200, &Message{Type: "notification", Data: map[string]string{"content": "Hello"}})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(received), "notification")
	assert.Contains(t, string(received), "Hello")
}

func TestHub_SendProgress(t *testing.T) {
	hub := NewHub()
	conn, cleanup := connect(t, hub, 300)
	defer cleanup()
	other, cleanupOther := connect(t, hub, 301)
	defer cleanupOther()

	require.NoError(t, hub.SendProgress(&pubsub.ProgressMessage{
		UserID: 300,
		RunID:  7,
		Status: "processing",
		Step:   pubsub.StepBuilding,
	}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg pubsub.ProgressMessage
	require.NoError(t, json.Unmarshal(received, &msg))
	assert.Equal(t, "ingest_progress", msg.Type)
	assert.Equal(t, int64(7), msg.RunID)
	assert.Equal(t, 60, msg.Progress)
	assert.NotEmpty(t, msg.Message)

	// 其他用户收不到
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}
