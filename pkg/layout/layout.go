// Package layout holds the fixed geometry and connection constants of the
// installation: panel units, tracking volumes, the upstream endpoint and
// timing. A Config is loaded once at start-up and never mutated afterwards.
package layout

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values, matching the installation controller.
const (
	DefaultURL            = "wss://cvtower.tail830204.ts.net/"
	DefaultReconnectDelay = 3000 * time.Millisecond
	DefaultFrameRate      = 60
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("layout: invalid config")

// ConfigError names the offending field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("layout: %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// PanelPlacement positions one panel relative to its unit centre.
type PanelPlacement struct {
	Y     float64 `yaml:"y" json:"y"`
	Z     float64 `yaml:"z" json:"z"`
	Angle float64 `yaml:"angle" json:"angle"` // degrees from vertical
}

// Trackzone is the monitored volume people are tracked in (cm).
type Trackzone struct {
	Width   float64 `yaml:"width" json:"width"`
	Depth   float64 `yaml:"depth" json:"depth"`
	Height  float64 `yaml:"height" json:"height"`
	OffsetZ float64 `yaml:"offset_z" json:"offset_z"`
	OffsetY float64 `yaml:"offset_y" json:"offset_y"`
	CenterX float64 `yaml:"center_x" json:"center_x"`
}

// WanderBox bounds where the light source may move (cm).
type WanderBox struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
	MinZ float64 `yaml:"min_z" json:"min_z"`
	MaxZ float64 `yaml:"max_z" json:"max_z"`
}

// Center returns the middle of the box.
func (w WanderBox) Center() (x, y, z float64) {
	return (w.MinX + w.MaxX) / 2, (w.MinY + w.MaxY) / 2, (w.MinZ + w.MaxZ) / 2
}

// Size returns the box extents.
func (w WanderBox) Size() (x, y, z float64) {
	return w.MaxX - w.MinX, w.MaxY - w.MinY, w.MaxZ - w.MinZ
}

// Config is the immutable configuration bundle.
type Config struct {
	// URL is the single upstream endpoint. Reconnects always target it.
	URL string `yaml:"url" json:"url"`

	// ReconnectDelay is the fixed wait between a lost connection and the next dial.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" json:"reconnect_delay"`

	// FrameRate is the render loop tick rate in Hz.
	FrameRate int `yaml:"frame_rate" json:"frame_rate"`

	// Panel layout.
	Units         int                    `yaml:"units" json:"units"`
	PanelsPerUnit int                    `yaml:"panels_per_unit" json:"panels_per_unit"`
	PanelSize     float64                `yaml:"panel_size" json:"panel_size"`
	UnitSpacing   float64                `yaml:"unit_spacing" json:"unit_spacing"`
	UnitOffset    float64                `yaml:"unit_offset" json:"unit_offset"`
	Panels        map[int]PanelPlacement `yaml:"panels" json:"panels"` // keyed by panel number (1-based)

	Trackzone Trackzone `yaml:"trackzone" json:"trackzone"`
	WanderBox WanderBox `yaml:"wander_box" json:"wander_box"`
}

// DefaultConfig returns the layout of the installed ceiling: four units of
// three panels each.
func DefaultConfig() Config {
	return Config{
		URL:            DefaultURL,
		ReconnectDelay: DefaultReconnectDelay,
		FrameRate:      DefaultFrameRate,
		Units:          4,
		PanelsPerUnit:  3,
		PanelSize:      60,
		UnitSpacing:    80,
		UnitOffset:     30,
		Panels: map[int]PanelPlacement{
			1: {Y: 90, Z: 0, Angle: 0},
			2: {Y: 30, Z: 12, Angle: 22.5},
			3: {Y: 30, Z: -12, Angle: -22.5},
		},
		Trackzone: Trackzone{
			Width:   260,
			Depth:   205,
			Height:  300,
			OffsetZ: 78,
			OffsetY: -66,
			CenterX: -150,
		},
		WanderBox: WanderBox{
			MinX: -280, MaxX: -20,
			MinY: 0, MaxY: 150,
			MinZ: -28, MaxZ: 32,
		},
	}
}

// LoadFile reads a YAML bundle. Keys missing from the file keep their
// DefaultConfig values.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the bundle is usable.
func (c *Config) Validate() error {
	if c.URL == "" {
		return &ConfigError{Field: "url", Message: "endpoint URL is required"}
	}
	if c.ReconnectDelay <= 0 {
		return &ConfigError{Field: "reconnect_delay", Message: "must be positive"}
	}
	if c.FrameRate <= 0 {
		return &ConfigError{Field: "frame_rate", Message: "must be positive"}
	}
	if c.Units <= 0 || c.PanelsPerUnit <= 0 {
		return &ConfigError{Field: "units", Message: "units and panels_per_unit must be positive"}
	}
	for n := 1; n <= c.PanelsPerUnit; n++ {
		if _, ok := c.Panels[n]; !ok {
			return &ConfigError{Field: "panels", Message: fmt.Sprintf("no placement for panel %d", n)}
		}
	}
	return nil
}

// PanelCount is the length of the panel brightness array.
func (c *Config) PanelCount() int {
	return c.Units * c.PanelsPerUnit
}

// PanelIndex returns the wire index of a panel: unit-major, then panel
// number (1-based) minor.
func (c *Config) PanelIndex(unit, panelNum int) int {
	return unit*c.PanelsPerUnit + (panelNum - 1)
}

// UnitX returns the X coordinate of a unit centre. Units extend along
// negative X.
func (c *Config) UnitX(unit int) float64 {
	return -(float64(unit)*c.UnitSpacing + c.UnitOffset)
}

// FrameInterval returns the render tick period.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
