// Package scene defines the capability set the viewer needs from a 3D
// rendering engine, a headless in-memory engine implementing it, and the
// one-time construction of the installation's static objects.
package scene

import (
	"encoding/json"
	"fmt"
	"math"
)

// Handle identifies an object owned by an engine. Zero is never a valid handle.
type Handle uint64

// Kind names the renderable an engine should create.
type Kind string

const (
	KindRoot      Kind = "root"
	KindFloor     Kind = "floor"
	KindPanel     Kind = "panel"     // lit area of one wall panel
	KindFrame     Kind = "frame"     // dark panel frame
	KindLight     Kind = "light"     // light source sphere
	KindGlow      Kind = "glow"      // halo around the light
	KindFalloff   Kind = "falloff"   // wireframe falloff radius indicator
	KindPerson    Kind = "person"    // body cylinder + head
	KindWireframe Kind = "wireframe" // zone outline box
)

// Params carries creation parameters. Keys are engine-agnostic hints such as
// "radius", "color", "width" or "parent".
type Params map[string]any

// Vec3 is a point or direction in installation coordinates (cm, Y up).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*f.
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// Color is a linear RGB triple, each channel 0..1. A channel may be NaN when
// its source value was missing.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// MarshalJSON writes non-finite channels as null.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		R *float64 `json:"r"`
		G *float64 `json:"g"`
		B *float64 `json:"b"`
	}{finite(c.R), finite(c.G), finite(c.B)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Camera is the viewpoint handed to RenderFrame.
type Camera struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	FOV      float64 `json:"fov"` // vertical, degrees
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// DefaultCamera frames the panels and the tracking area.
func DefaultCamera() Camera {
	return Camera{
		Position: Vec3{X: 200, Y: 250, Z: 450},
		Target:   Vec3{X: -150, Y: 60, Z: 120},
		FOV:      50,
		Near:     1,
		Far:      2000,
	}
}

// Engine is everything the viewer core needs from a renderer. Calls on an
// unknown handle are ignored.
type Engine interface {
	CreateObject(kind Kind, params Params) Handle
	DestroyObject(h Handle)
	SetPosition(h Handle, x, y, z float64)
	SetScale(h Handle, factor float64)
	SetColor(h Handle, r, g, b float64)
	SetOpacity(h Handle, value float64)
	RenderFrame(camera Camera, root Handle)
}
