package web

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dropceiling/pkg/hub"
	"github.com/teslashibe/go-dropceiling/pkg/scene"
)

// OrbitRequest is the body of POST /api/camera/orbit. Angles are radians;
// zoom is a dolly factor, 0 for none.
type OrbitRequest struct {
	Azimuth float64 `json:"azimuth"`
	Polar   float64 `json:"polar"`
	Zoom    float64 `json:"zoom"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.viewer.Status())
}

// handleScene returns the last rendered frame, or the live objects before
// the first frame.
func (s *Server) handleScene(c *fiber.Ctx) error {
	if f := s.graph.LastFrame(); f != nil {
		return c.JSON(f)
	}
	return c.JSON(scene.Frame{Camera: s.viewer.Camera(), Root: s.viewer.Static().Root, Objects: s.graph.Objects()})
}

func (s *Server) handleTrends(c *fiber.Ctx) error {
	return c.JSON(s.panel.View())
}

func (s *Server) handleToggleTrends(c *fiber.Ctx) error {
	visible := s.viewer.ToggleTrends()
	if err := s.statusHub.Publish(hub.TopicTrends, s.panel.View()); err != nil {
		s.logger.Warn("publish trends", "error", err)
	}
	return c.JSON(fiber.Map{"visible": visible})
}

func (s *Server) handleTrendsChart(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.panel.RenderChart(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (s *Server) handleOrbit(c *fiber.Ctx) error {
	var req OrbitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid orbit request",
		})
	}
	s.viewer.Orbit(req.Azimuth, req.Polar, req.Zoom)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats := fiber.Map{
		"viewer": s.viewer.Stats(),
		"hubs": fiber.Map{
			"status": s.statusHub.Stats(),
			"scene":  s.sceneHub.Stats(),
		},
	}
	if s.upstream != nil {
		stats["upstream"] = s.upstream.Stats()
	}
	return c.JSON(stats)
}

// handleStatusWS sends the current status, then every change.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	first, err := hub.Encode(hub.TopicStatus, s.viewer.Status())
	if err != nil {
		s.logger.Warn("encode status", "error", err)
	}
	hub.NewClient(s.statusHub, c, first).Run()
}

// handleSceneWS streams rendered frames.
func (s *Server) handleSceneWS(c *websocket.Conn) {
	hub.NewClient(s.sceneHub, c, nil).Run()
}
