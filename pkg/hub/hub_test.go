package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, port string, first []byte) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", fws.New(func(c *fws.Conn) {
		NewClient(h, c, first).Run()
	}))
	go app.Listen(":" + port)
	t.Cleanup(func() {
		cancel()
		app.Shutdown()
	})
	time.Sleep(100 * time.Millisecond)
	return h, cancel
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func readMessage(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestEncode(t *testing.T) {
	b, err := Encode(TopicStatus, map[string]int{"people": 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"status","data":{"people":2}}`, string(b))
}

func TestNewHub(t *testing.T) {
	h := New("status", nil)
	assert.Equal(t, 0, h.ClientCount())
	assert.False(t, h.IsRunning())
	assert.Equal(t, Stats{}, h.Stats())
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	h := New("full", nil)
	for range broadcastBuffer + 3 {
		h.Broadcast([]byte("x"))
	}
	assert.Equal(t, uint64(3), h.Stats().Dropped)
}

func TestPublishReachesClients(t *testing.T) {
	first, err := Encode(TopicStatus, "hello")
	require.NoError(t, err)
	h, _ := startHub(t, "18281", first)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18281/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	waitClients(t, h, 1)

	msg := readMessage(t, ws)
	assert.Equal(t, TopicStatus, msg.Topic)
	assert.Equal(t, "hello", msg.Data)

	require.NoError(t, h.Publish(TopicFrame, map[string]int{"frame": 7}))
	msg = readMessage(t, ws)
	assert.Equal(t, TopicFrame, msg.Topic)
	assert.Equal(t, map[string]any{"frame": float64(7)}, msg.Data)

	assert.True(t, h.IsRunning())
	assert.Equal(t, 1, h.Stats().Clients)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h, _ := startHub(t, "18282", nil)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18282/ws", nil)
	require.NoError(t, err)
	waitClients(t, h, 1)

	ws.Close()
	waitClients(t, h, 0)
}

func TestCancelClosesClients(t *testing.T) {
	h, cancel := startHub(t, "18283", nil)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18283/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	waitClients(t, h, 1)

	cancel()
	require.Eventually(t, func() bool { return !h.IsRunning() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)
}

func TestRunWaitsForWriter(t *testing.T) {
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	returned := make(chan bool, 1)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", fws.New(func(c *fws.Conn) {
		client := NewClient(h, c, nil)
		client.Run()
		select {
		case <-client.done:
			returned <- true
		default:
			returned <- false
		}
	}))
	go app.Listen(":18284")
	defer app.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18284/ws", nil)
	require.NoError(t, err)
	waitClients(t, h, 1)
	ws.Close()

	select {
	case ok := <-returned:
		assert.True(t, ok, "Run returned before the write pump exited")
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return")
	}
}
