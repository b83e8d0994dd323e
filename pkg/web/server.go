// Package web serves the viewer dashboard: JSON status, the live scene, the
// trends panel and websocket feeds for browsers.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dropceiling/pkg/hub"
	"github.com/teslashibe/go-dropceiling/pkg/scene"
	"github.com/teslashibe/go-dropceiling/pkg/stream"
	"github.com/teslashibe/go-dropceiling/pkg/trends"
	"github.com/teslashibe/go-dropceiling/pkg/viewer"
)

// DefaultSceneEvery publishes every 6th frame, 10 Hz at 60 fps.
const DefaultSceneEvery = 6

// Options configures the dashboard.
type Options struct {
	Port       string
	Viewer     *viewer.App
	Graph      *scene.Graph
	Panel      *trends.Panel   // optional
	Upstream   *stream.Manager // optional, for /api/stats
	SceneEvery int
	Logger     *slog.Logger
}

// Server is the web dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	viewer   *viewer.App
	graph    *scene.Graph
	panel    *trends.Panel
	upstream *stream.Manager

	statusHub *hub.Hub
	sceneHub  *hub.Hub

	sceneEvery uint64
	frames     atomic.Uint64
}

// NewServer creates the dashboard and hooks it to the viewer and graph.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	every := opts.SceneEvery
	if every <= 0 {
		every = DefaultSceneEvery
	}

	s := &Server{
		port:       opts.Port,
		logger:     logger.With("component", "web.server"),
		viewer:     opts.Viewer,
		graph:      opts.Graph,
		panel:      opts.Panel,
		upstream:   opts.Upstream,
		statusHub:  hub.New("status", logger),
		sceneHub:   hub.New("scene", logger),
		sceneEvery: uint64(every),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Drop Ceiling Viewer",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/scene", s.handleScene)
	api.Get("/trends", s.handleTrends)
	api.Post("/trends/toggle", s.handleToggleTrends)
	api.Get("/trends/chart", s.handleTrendsChart)
	api.Post("/camera/orbit", s.handleOrbit)
	api.Get("/stats", s.handleStats)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/scene", websocket.New(s.handleSceneWS))

	s.app = app
	s.attach()
	return s
}

// attach publishes viewer status changes and rendered frames to the hubs.
func (s *Server) attach() {
	if s.viewer != nil {
		s.viewer.OnStatusChange(func(st viewer.Status) {
			if err := s.statusHub.Publish(hub.TopicStatus, st); err != nil {
				s.logger.Warn("publish status", "error", err)
			}
		})
	}
	if s.graph != nil {
		s.graph.OnRender(func(f scene.Frame) {
			if s.frames.Add(1)%s.sceneEvery != 0 || s.sceneHub.ClientCount() == 0 {
				return
			}
			if err := s.sceneHub.Publish(hub.TopicFrame, f); err != nil {
				s.logger.Warn("publish frame", "frame", f.Number, "error", err)
			}
		})
	}
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Start runs the hubs and listens until the listener fails or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	fmt.Printf("🌐 Dashboard: http://localhost:%s\n", s.port)

	go s.statusHub.Run(ctx)
	go s.sceneHub.Run(ctx)

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
