package scene

import "github.com/teslashibe/go-dropceiling/pkg/layout"

// Fixed dimensions of the scene props (cm).
const (
	panelDepth      = 1.5
	panelFrameWidth = 4
	lightRadius     = 8
	glowRadius      = 15
	falloffRadius   = 50
	personRadius    = 15
	personHeight    = 150
)

// Colours used by the static props.
var (
	panelDimColor  = Color{R: 0.2, G: 0.2, B: 0.2}
	frameColor     = Color{R: 0.165, G: 0.165, B: 0.184}
	glowColor      = Color{R: 1, G: 1, B: 0.8}
	falloffColor   = Color{R: 1, G: 0.8, B: 0}
	personColor    = Color{R: 0.4, G: 0.933, B: 0.533}
	trackzoneColor = Color{R: 0, G: 1, B: 1}
	wanderColor    = Color{R: 1, G: 1, B: 0}
	floorColor     = Color{R: 0.102, G: 0.102, B: 0.122}
)

// Static holds the handles the viewer mutates after construction.
type Static struct {
	Root    Handle
	Panels  []Handle // lit areas, in wire index order
	Light   Handle
	Glow    Handle
	Falloff Handle
}

// Build creates the fixed geometry once: floor, panels, the light with its
// glow and falloff indicator, and the zone wireframes.
func Build(e Engine, cfg layout.Config) Static {
	var s Static
	s.Root = e.CreateObject(KindRoot, Params{})

	tz := cfg.Trackzone
	floor := e.CreateObject(KindFloor, Params{
		"parent": s.Root, "width": 500.0, "depth": tz.OffsetZ + 200, "color": floorColor, "opacity": 0.8,
	})
	e.SetPosition(floor, tz.CenterX, 0, (tz.OffsetZ-200)/2)

	s.Panels = make([]Handle, cfg.PanelCount())
	for unit := 0; unit < cfg.Units; unit++ {
		x := cfg.UnitX(unit)
		for n := 1; n <= cfg.PanelsPerUnit; n++ {
			p := cfg.Panels[n]
			frame := e.CreateObject(KindFrame, Params{
				"parent": s.Root, "size": cfg.PanelSize, "depth": panelDepth,
				"angle": -p.Angle, "color": frameColor, "unit": unit, "panel": n,
			})
			e.SetPosition(frame, x, p.Y, p.Z)

			lit := e.CreateObject(KindPanel, Params{
				"parent": s.Root, "size": cfg.PanelSize - panelFrameWidth*2,
				"angle": -p.Angle, "color": panelDimColor, "unit": unit, "panel": n,
			})
			e.SetPosition(lit, x, p.Y, p.Z+panelDepth/2+0.1)
			s.Panels[cfg.PanelIndex(unit, n)] = lit
		}
	}

	s.Light = e.CreateObject(KindLight, Params{"parent": s.Root, "radius": float64(lightRadius)})
	e.SetPosition(s.Light, 120, 60, -30)
	s.Glow = e.CreateObject(KindGlow, Params{
		"parent": s.Light, "radius": float64(glowRadius), "color": glowColor, "opacity": 0.3,
	})
	s.Falloff = e.CreateObject(KindFalloff, Params{
		"parent": s.Light, "radius": float64(falloffRadius), "color": falloffColor, "opacity": 0.05, "wireframe": true,
	})

	zone := e.CreateObject(KindWireframe, Params{
		"parent": s.Root, "name": "trackzone", "width": tz.Width, "height": tz.Height, "depth": tz.Depth,
		"color": trackzoneColor, "opacity": 0.3,
	})
	e.SetPosition(zone, tz.CenterX, tz.OffsetY+tz.Height/2, tz.OffsetZ+tz.Depth/2)

	wb := cfg.WanderBox
	w, h, d := wb.Size()
	wander := e.CreateObject(KindWireframe, Params{
		"parent": s.Root, "name": "wander_box", "width": w, "height": h, "depth": d,
		"color": wanderColor, "opacity": 0.4,
	})
	cx, cy, cz := wb.Center()
	e.SetPosition(wander, cx, cy, cz)

	return s
}

// PersonParams returns creation params for a tracked person under root.
func PersonParams(root Handle, id int) Params {
	return Params{
		"parent": root, "id": id, "radius": float64(personRadius), "height": float64(personHeight),
		"color": personColor, "opacity": 0.85,
	}
}
