package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-dropceiling/pkg/stream"
)

const recording = `# three snapshots
{"mode": "idle"}

{"people": [{"id": 1, "x": 0, "y": 0, "z": 0}]}
{"mode": "active"}
`

func TestParse(t *testing.T) {
	src, err := Parse(strings.NewReader(recording))
	require.NoError(t, err)
	require.Equal(t, 3, src.Len())
	assert.JSONEq(t, `{"mode": "idle"}`, string(src.Frame(0)))
	assert.JSONEq(t, `{"mode": "active"}`, string(src.Frame(2)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ErrEmpty.Error()},
		{"comments only", "# nothing\n\n", ErrEmpty.Error()},
		{"array", `{"mode": "idle"}` + "\n[1, 2]\n", "line 2"},
		{"broken", `{"mode": `, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(recording), 0o644))

	src, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func startReplay(t *testing.T, port string, cfg Config) *Server {
	t.Helper()
	src, err := Parse(strings.NewReader(recording))
	require.NoError(t, err)
	s := NewServer(src, cfg)
	go s.Listen(":" + port)
	t.Cleanup(func() { s.Shutdown() })
	time.Sleep(100 * time.Millisecond)
	return s
}

func TestStreamsInOrderAndLoops(t *testing.T) {
	s := startReplay(t, "18291", Config{Interval: 5 * time.Millisecond, Loop: true})

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18291/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	var got []string
	for range 4 {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		got = append(got, string(data))
	}
	assert.Equal(t, []string{
		`{"mode": "idle"}`,
		`{"people": [{"id": 1, "x": 0, "y": 0, "z": 0}]}`,
		`{"mode": "active"}`,
		`{"mode": "idle"}`,
	}, got)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Clients)
	assert.Equal(t, uint64(1), stats.Served)
	assert.GreaterOrEqual(t, stats.Sent, uint64(4))
}

func TestStopsAtEndWithoutLoop(t *testing.T) {
	startReplay(t, "18292", Config{Interval: 5 * time.Millisecond})

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18292/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	for range 3 {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := ws.ReadMessage()
		require.NoError(t, err)
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestDropClientsEndsStream(t *testing.T) {
	s := startReplay(t, "18294", Config{Interval: 5 * time.Millisecond, Loop: true})

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18294/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	require.NoError(t, err)

	assert.Equal(t, 1, s.DropClients())
	assert.Equal(t, 0, s.Stats().Clients)

	for {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err = ws.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, s.DropClients())
}

// TestViewerReconnectsAfterDrop runs the connection manager against the
// replay server and drops it once.
func TestViewerReconnectsAfterDrop(t *testing.T) {
	s := startReplay(t, "18293", Config{Interval: 10 * time.Millisecond, Loop: true})

	var mu sync.Mutex
	var labels []string
	m := stream.New(stream.Config{ReconnectDelay: 50 * time.Millisecond})
	m.OnStatus(func(_ stream.State, label string) {
		mu.Lock()
		labels = append(labels, label)
		mu.Unlock()
	})
	received := make(chan struct{}, 256)
	m.OnMessage(func([]byte) {
		select {
		case received <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Connect(ctx, "ws://localhost:18293/ws"))
	defer m.Close()

	require.Eventually(t, func() bool { return s.Stats().Clients == 1 }, 2*time.Second, 10*time.Millisecond)
	<-received

	assert.Equal(t, 1, s.DropClients())

	require.Eventually(t, func() bool { return m.Stats().Connects == 2 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(2), s.Stats().Served)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return labels[len(labels)-1] == stream.LabelLive
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, labels, stream.LabelDisconnected)
}
