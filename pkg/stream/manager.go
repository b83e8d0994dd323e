// Package stream keeps one websocket connection to the installation
// controller alive and hands every inbound text frame to a single handler.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-dropceiling/internal/httpc"
)

// DefaultReconnectDelay is the fixed wait between a failure and the next dial.
const DefaultReconnectDelay = 3000 * time.Millisecond

// Status labels shown to the user.
const (
	LabelConnecting   = "Connecting..."
	LabelLive         = "Live"
	LabelDisconnected = "Disconnected"
	LabelDialFailed   = "Failed to connect"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("stream: manager closed")

// State is the connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config configures a Manager.
type Config struct {
	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
	Header           http.Header
	Logger           *slog.Logger
}

// Stats are connection counters.
type Stats struct {
	State       string `json:"state"`
	Attempts    uint64 `json:"attempts"`
	Connects    uint64 `json:"connects"`
	Reconnects  uint64 `json:"reconnects"`
	Messages    uint64 `json:"messages"`
	LastAttempt string `json:"last_attempt,omitempty"`
}

// Manager owns one logical upstream connection. It retries forever with a
// fixed delay; only cancelling the context (or Close) stops it.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer
	after  func(time.Duration) <-chan time.Time

	// connectMu serializes Connect and Close so one loop runs at a time.
	connectMu sync.Mutex

	mu          sync.Mutex
	state       State
	onMessage   func([]byte)
	onStatus    func(State, string)
	cancel      context.CancelFunc
	done        chan struct{}
	closed      bool
	lastAttempt string

	attempts   atomic.Uint64
	connects   atomic.Uint64
	reconnects atomic.Uint64
	messages   atomic.Uint64
}

// New creates a manager. Zero config fields take their defaults.
func New(cfg Config) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = httpc.DefaultHandshakeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.With("component", "stream.manager"),
		dialer: httpc.NewDialer(cfg.HandshakeTimeout),
		after:  time.After,
	}
}

// OnMessage sets the handler for inbound text payloads. It is called from the
// read goroutine, one message at a time, in receipt order.
func (m *Manager) OnMessage(callback func([]byte)) {
	m.mu.Lock()
	m.onMessage = callback
	m.mu.Unlock()
}

// OnStatus sets the callback invoked on every state transition.
func (m *Manager) OnStatus(callback func(State, string)) {
	m.mu.Lock()
	m.onStatus = callback
	m.mu.Unlock()
}

// Connect starts the connection loop for url in the background. A loop
// started by an earlier Connect is cancelled and waited for first.
func (m *Manager) Connect(ctx context.Context, url string) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	prevCancel, prevDone := m.cancel, m.done
	m.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel, m.done = cancel, done
	m.mu.Unlock()

	go m.loop(loopCtx, url, done)
	return nil
}

// Run connects and blocks until ctx is done.
func (m *Manager) Run(ctx context.Context, url string) error {
	if err := m.Connect(ctx, url); err != nil {
		return err
	}
	<-ctx.Done()
	m.Close()
	return nil
}

// Close stops the connection loop and waits for it to exit.
func (m *Manager) Close() {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.mu.Lock()
	m.closed = true
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns a snapshot of the connection counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	state, last := m.state, m.lastAttempt
	m.mu.Unlock()
	return Stats{
		State:       state.String(),
		Attempts:    m.attempts.Load(),
		Connects:    m.connects.Load(),
		Reconnects:  m.reconnects.Load(),
		Messages:    m.messages.Load(),
		LastAttempt: last,
	}
}

func (m *Manager) loop(ctx context.Context, url string, done chan struct{}) {
	defer close(done)

	for {
		attempt := uuid.NewString()
		m.mu.Lock()
		m.lastAttempt = attempt
		m.mu.Unlock()
		m.attempts.Add(1)

		m.setState(Connecting, LabelConnecting)
		logger := m.logger.With("attempt", attempt, "url", url)

		conn, resp, err := m.dialer.DialContext(ctx, url, m.cfg.Header)
		switch {
		case ctx.Err() != nil:
			if conn != nil {
				conn.Close()
			}
			m.setState(Disconnected, LabelDisconnected)
			return
		case err != nil:
			if resp != nil {
				err = fmt.Errorf("dial failed (status %d): %w", resp.StatusCode, err)
			}
			logger.Warn("upstream dial failed", "error", err)
			m.setState(Error, LabelDialFailed)
		default:
			m.connects.Add(1)
			logger.Info("upstream connected")
			m.setState(Connected, LabelLive)

			err = m.read(ctx, conn)
			if ctx.Err() != nil {
				m.setState(Disconnected, LabelDisconnected)
				return
			}
			logger.Warn("upstream disconnected", "error", err)
			m.setState(Error, LabelDisconnected)
		}

		logger.Info("reconnecting", "delay", m.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			m.setState(Disconnected, LabelDisconnected)
			return
		case <-m.after(m.cfg.ReconnectDelay):
		}
		m.reconnects.Add(1)
	}
}

// read pumps messages until the connection fails or ctx is cancelled.
func (m *Manager) read(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		m.messages.Add(1)

		m.mu.Lock()
		handler := m.onMessage
		m.mu.Unlock()
		if handler != nil {
			handler(data)
		}
	}
}

func (m *Manager) setState(s State, label string) {
	m.mu.Lock()
	m.state = s
	callback := m.onStatus
	m.mu.Unlock()

	m.logger.Debug("connection state", "state", s.String(), "label", label)
	if callback != nil {
		callback(s, label)
	}
}
