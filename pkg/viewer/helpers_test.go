package viewer

import (
	"sync"

	"github.com/teslashibe/go-dropceiling/pkg/scene"
	"github.com/teslashibe/go-dropceiling/pkg/snapshot"
)

// recordingEngine is a scene.Graph that also counts person lifecycle calls.
type recordingEngine struct {
	*scene.Graph

	mu       sync.Mutex
	created  int
	destroys int
	renders  int
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{Graph: scene.NewGraph()}
}

func (e *recordingEngine) CreateObject(kind scene.Kind, params scene.Params) scene.Handle {
	h := e.Graph.CreateObject(kind, params)
	if kind == scene.KindPerson {
		e.mu.Lock()
		e.created++
		e.mu.Unlock()
	}
	return h
}

func (e *recordingEngine) DestroyObject(h scene.Handle) {
	if obj, ok := e.Graph.Object(h); ok && obj.Kind == scene.KindPerson {
		e.mu.Lock()
		e.destroys++
		e.mu.Unlock()
	}
	e.Graph.DestroyObject(h)
}

func (e *recordingEngine) RenderFrame(camera scene.Camera, root scene.Handle) {
	e.mu.Lock()
	e.renders++
	e.mu.Unlock()
	e.Graph.RenderFrame(camera, root)
}

func (e *recordingEngine) counts() (created, destroyed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.created, e.destroys
}

// fakeDisplay records every call the report cache makes.
type fakeDisplay struct {
	visible  bool
	realtime []*snapshot.RealtimeTrends
	daily    []*snapshot.DailyReport
}

func (d *fakeDisplay) Visible() bool { return d.visible }

func (d *fakeDisplay) SetVisible(v bool) { d.visible = v }

func (d *fakeDisplay) ShowRealtime(rt *snapshot.RealtimeTrends) {
	d.realtime = append(d.realtime, rt)
}

func (d *fakeDisplay) ShowDailyReport(r *snapshot.DailyReport) {
	d.daily = append(d.daily, r)
}

func people(readings ...snapshot.PersonReading) snapshot.Opt[[]snapshot.PersonReading] {
	if readings == nil {
		readings = []snapshot.PersonReading{}
	}
	return snapshot.Some(readings)
}

func person(id int, x, y, z float64) snapshot.PersonReading {
	return snapshot.PersonReading{ID: id, X: x, Y: y, Z: z}
}
