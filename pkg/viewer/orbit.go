package viewer

import (
	"math"

	"github.com/teslashibe/go-dropceiling/pkg/scene"
)

// Orbit defaults.
const (
	OrbitDamping     = 0.05
	OrbitMinDistance = 100.0
	OrbitMaxDistance = 1500.0

	polarEpsilon = 1e-6
)

// Orbit is a damped orbit camera around a fixed target. Input is queued with
// Rotate and Zoom and applied gradually by Update, once per frame.
type Orbit struct {
	camera scene.Camera

	radius, theta, phi float64

	dTheta, dPhi float64
	zoom         float64

	Damping     float64
	MinDistance float64
	MaxDistance float64
}

// NewOrbit derives the orbit state from an initial camera.
func NewOrbit(camera scene.Camera) *Orbit {
	o := &Orbit{
		camera:      camera,
		zoom:        1,
		Damping:     OrbitDamping,
		MinDistance: OrbitMinDistance,
		MaxDistance: OrbitMaxDistance,
	}
	off := camera.Position.Sub(camera.Target)
	o.radius = math.Sqrt(off.X*off.X + off.Y*off.Y + off.Z*off.Z)
	if o.radius > 0 {
		o.theta = math.Atan2(off.X, off.Z)
		o.phi = math.Acos(clamp(off.Y/o.radius, -1, 1))
	}
	return o
}

// Rotate queues an azimuth/polar rotation in radians.
func (o *Orbit) Rotate(azimuth, polar float64) {
	o.dTheta += azimuth
	o.dPhi += polar
}

// Zoom queues a dolly; factor > 1 moves away from the target.
func (o *Orbit) Zoom(factor float64) {
	if factor > 0 {
		o.zoom *= factor
	}
}

// Update applies one frame of queued input and returns the resulting camera.
func (o *Orbit) Update() scene.Camera {
	o.theta += o.dTheta * o.Damping
	o.phi = clamp(o.phi+o.dPhi*o.Damping, polarEpsilon, math.Pi-polarEpsilon)
	o.radius = clamp(o.radius*o.zoom, o.MinDistance, o.MaxDistance)

	o.dTheta *= 1 - o.Damping
	o.dPhi *= 1 - o.Damping
	o.zoom = 1

	sinPhi := math.Sin(o.phi)
	o.camera.Position = o.camera.Target.Add(scene.Vec3{
		X: o.radius * sinPhi * math.Sin(o.theta),
		Y: o.radius * math.Cos(o.phi),
		Z: o.radius * sinPhi * math.Cos(o.theta),
	})
	return o.camera
}

// Camera returns the camera as of the last Update.
func (o *Orbit) Camera() scene.Camera { return o.camera }

// Distance returns the current distance to the target.
func (o *Orbit) Distance() float64 { return o.radius }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
