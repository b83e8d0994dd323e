package viewer

import (
	"math"

	"github.com/teslashibe/go-dropceiling/pkg/scene"
)

// Transfer function constants. These match the installation controller's
// own preview and must not drift.
const (
	DMXMin = 1
	DMXMax = 50

	DefaultBrightness    = 0.5
	DefaultFalloffRadius = 50.0

	// PersonAnchorOffset lifts a floor-level reading to torso height.
	PersonAnchorOffset = 85.0

	panelGamma     = 0.6
	panelFloor     = 0.03
	panelGain      = 1.17
	panelGreenTint = 0.95
	panelBlueTint  = 0.85

	pulseAmplitude = 0.1
	pulseRate      = 0.003
)

// NormalizeDMX maps a raw panel value from [1,50] to [0,1]. Out-of-range
// input is not clamped.
func NormalizeDMX(v int) float64 {
	return float64(v-DMXMin) / float64(DMXMax-DMXMin)
}

// PanelColor converts a raw panel value into a warm-tinted RGB intensity.
// A negative normalized value yields NaN from the power curve, exactly as
// the controller's own preview does; callers pass it through untouched.
func PanelColor(v int) scene.Color {
	c := math.Pow(NormalizeDMX(v), panelGamma)
	i := panelFloor + c*panelGain
	return scene.Color{
		R: math.Min(i, 1),
		G: math.Min(i*panelGreenTint, 1),
		B: math.Min(i*panelBlueTint, 1),
	}
}

// LightScale is the light sphere scale for a brightness in [0,1].
func LightScale(brightness float64) float64 {
	return 0.8 + brightness*0.4
}

// GlowOpacity is the halo opacity for a brightness in [0,1].
func GlowOpacity(brightness float64) float64 {
	return 0.2 + brightness*0.3
}

// FalloffScale is the falloff indicator scale; the indicator mesh is built
// with radius 50.
func FalloffScale(radius float64) float64 {
	return radius / DefaultFalloffRadius
}

// Pulse is the idle glow scale at wall-clock time t in milliseconds.
func Pulse(tMillis int64) float64 {
	return 1 + pulseAmplitude*math.Sin(float64(tMillis)*pulseRate)
}
