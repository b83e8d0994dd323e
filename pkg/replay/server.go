package replay

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
)

// DefaultInterval matches a 10 Hz installation.
const DefaultInterval = 100 * time.Millisecond

// Config configures a replay server.
type Config struct {
	Interval time.Duration
	Loop     bool
	Logger   *slog.Logger
}

// Stats are server counters.
type Stats struct {
	Clients int    `json:"clients"`
	Served  uint64 `json:"served"`
	Sent    uint64 `json:"sent"`
}

type client struct {
	id   string
	quit chan struct{}
}

// Server streams a Source to every websocket client on /ws. Each client
// gets its own cursor starting at the first snapshot.
type Server struct {
	app    *fiber.App
	src    *Source
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*client

	served atomic.Uint64
	sent   atomic.Uint64
}

// NewServer creates a replay server for src.
func NewServer(src *Source, cfg Config) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		src:     src,
		cfg:     cfg,
		logger:  logger.With("component", "replay.server"),
		clients: make(map[string]*client),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Drop Ceiling Replay",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/api/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.Stats())
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleStream))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	fmt.Printf("📼 Replaying %d snapshots on ws://localhost%s/ws every %v\n", s.src.Len(), addr, s.cfg.Interval)
	return s.app.Listen(addr)
}

// Shutdown stops the server and drops every client.
func (s *Server) Shutdown() error {
	s.DropClients()
	return s.app.Shutdown()
}

// DropClients ends every open stream with a close frame and returns how
// many were ended. Clients are expected to reconnect.
func (s *Server) DropClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.clients)
	for id, c := range s.clients {
		close(c.quit)
		delete(s.clients, id)
	}
	if n > 0 {
		s.logger.Info("dropped clients", "count", n)
	}
	return n
}

// Stats returns the server counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	return Stats{Clients: n, Served: s.served.Load(), Sent: s.sent.Load()}
}

func (s *Server) handleStream(conn *websocket.Conn) {
	c := &client{id: uuid.NewString(), quit: make(chan struct{})}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.served.Add(1)

	logger := s.logger.With("client", c.id)
	logger.Info("client connected", "remote", conn.RemoteAddr().String())

	// The viewer never sends; reading only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// conn is pooled once the handler returns, so the reader must be done.
	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		conn.Close()
		<-gone
		logger.Info("client disconnected")
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for i := 0; ; {
		if err := conn.WriteMessage(websocket.TextMessage, s.src.Frame(i)); err != nil {
			logger.Debug("write failed", "error", err)
			return
		}
		s.sent.Add(1)

		i++
		if i == s.src.Len() {
			if !s.cfg.Loop {
				s.sendClose(logger, conn, "end of recording")
				return
			}
			i = 0
		}

		select {
		case <-gone:
			return
		case <-c.quit:
			s.sendClose(logger, conn, "dropped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) sendClose(logger *slog.Logger, conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		logger.Warn("close frame not sent", "reason", reason, "error", err)
	}
}
