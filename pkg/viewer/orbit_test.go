package viewer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/go-dropceiling/pkg/scene"
)

func TestOrbitStartsAtCamera(t *testing.T) {
	cam := scene.DefaultCamera()
	o := NewOrbit(cam)

	got := o.Update()

	assert.InDelta(t, cam.Position.X, got.Position.X, 1e-9)
	assert.InDelta(t, cam.Position.Y, got.Position.Y, 1e-9)
	assert.InDelta(t, cam.Position.Z, got.Position.Z, 1e-9)
	assert.Equal(t, cam.Target, got.Target)
}

func TestOrbitDampedRotation(t *testing.T) {
	o := NewOrbit(scene.DefaultCamera())
	start := o.Distance()

	o.Rotate(1, 0)
	first := o.Update()
	second := o.Update()

	// Each frame moves a damped share of the remaining rotation; the
	// distance to the target never changes.
	assert.NotEqual(t, first.Position, scene.DefaultCamera().Position)
	assert.NotEqual(t, first.Position, second.Position)
	assert.InDelta(t, start, o.Distance(), 1e-9)

	for i := 0; i < 2000; i++ {
		o.Update()
	}
	settled := o.Camera()
	o.Update()
	assert.InDelta(t, settled.Position.X, o.Camera().Position.X, 1e-6)
}

func TestOrbitZoomClamped(t *testing.T) {
	o := NewOrbit(scene.DefaultCamera())

	o.Zoom(100)
	o.Update()
	assert.Equal(t, OrbitMaxDistance, o.Distance())

	o.Zoom(0.0001)
	o.Update()
	assert.Equal(t, OrbitMinDistance, o.Distance())

	o.Zoom(-3) // ignored
	o.Update()
	assert.Equal(t, OrbitMinDistance, o.Distance())
}

func TestOrbitPolarClamped(t *testing.T) {
	o := NewOrbit(scene.DefaultCamera())
	o.Damping = 1

	o.Rotate(0, -10)
	cam := o.Update()

	off := cam.Position.Sub(cam.Target)
	assert.InDelta(t, o.Distance(), off.Y, 1e-3, "camera should sit above the target")
	assert.False(t, math.IsNaN(cam.Position.X))
}

func TestRenderLoopTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time, 16)

	l := NewRenderLoop(5*time.Millisecond, func(now time.Time) {
		select {
		case ticks <- now:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("render loop did not tick")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("render loop did not stop on cancel")
	}
}
