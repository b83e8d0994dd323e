// Package viewer is the state-synchronization core of the Drop Ceiling
// viewer. It folds upstream snapshots into a scene owned by a rendering
// engine and drives the frame loop.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-dropceiling/pkg/layout"
	"github.com/teslashibe/go-dropceiling/pkg/scene"
	"github.com/teslashibe/go-dropceiling/pkg/snapshot"
	"github.com/teslashibe/go-dropceiling/pkg/stream"
)

var (
	ErrNoEngine   = errors.New("viewer: engine is required")
	ErrNoUpstream = errors.New("viewer: upstream is required")
)

// Upstream delivers raw snapshot payloads and connection transitions.
// stream.Manager implements it.
type Upstream interface {
	OnMessage(callback func([]byte))
	OnStatus(callback func(stream.State, string))
	Run(ctx context.Context, url string) error
}

// Options configures an App.
type Options struct {
	Layout   layout.Config
	Engine   scene.Engine
	Upstream Upstream
	Display  Display // optional
	Logger   *slog.Logger
}

// PanelState is the last value applied to one wall panel.
type PanelState struct {
	Raw        int         `json:"raw"`
	Brightness float64     `json:"brightness"`
	Color      scene.Color `json:"color"`
}

// LightState holds the derived light parameters last applied to the scene.
type LightState struct {
	Position     scene.Vec3 `json:"position"`
	Scale        float64    `json:"scale"`
	GlowOpacity  float64    `json:"glow_opacity"`
	FalloffScale float64    `json:"falloff_scale"`
}

// Status is what the on-screen labels show.
type Status struct {
	Connection      string `json:"connection"`
	ConnectionLabel string `json:"connection_label"`
	Mode            string `json:"mode"`
	Behavior        string `json:"behavior"`
	People          int    `json:"people"`
	ReportVersion   int64  `json:"report_version"`
	TrendsVisible   bool   `json:"trends_visible"`
}

// Stats are message and frame counters.
type Stats struct {
	Messages     uint64    `json:"messages"`
	DecodeErrors uint64    `json:"decode_errors"`
	Frames       uint64    `json:"frames"`
	Creates      uint64    `json:"creates"`
	Updates      uint64    `json:"updates"`
	Destroys     uint64    `json:"destroys"`
	Redisplays   int       `json:"report_redisplays"`
	LastMessage  time.Time `json:"last_message,omitzero"`
}

type visibilityToggler interface {
	SetVisible(visible bool)
}

// App owns every piece of mutable viewer state. Snapshot application and
// frame rendering both hold mu, so a snapshot is applied completely before
// the next frame reads the scene.
type App struct {
	cfg      layout.Config
	logger   *slog.Logger
	engine   scene.Engine
	upstream Upstream
	display  Display
	now      func() time.Time

	mu        sync.Mutex
	static    scene.Static
	registry  *Registry
	reports   *ReportCache
	orbit     *Orbit
	panels    []PanelState
	light     *LightState
	mode      string
	behavior  string
	conn      stream.State
	connLabel string
	stats     Stats

	onStatus func(Status)
}

// New validates the layout and builds the static scene.
func New(opts Options) (*App, error) {
	if opts.Engine == nil {
		return nil, ErrNoEngine
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:       opts.Layout,
		logger:    logger.With("component", "viewer.app"),
		engine:    opts.Engine,
		upstream:  opts.Upstream,
		display:   opts.Display,
		now:       time.Now,
		reports:   NewReportCache(opts.Display),
		orbit:     NewOrbit(scene.DefaultCamera()),
		panels:    make([]PanelState, opts.Layout.PanelCount()),
		conn:      stream.Disconnected,
		connLabel: stream.LabelDisconnected,
	}
	a.static = scene.Build(a.engine, a.cfg)
	a.registry = NewRegistry(a.engine, a.static.Root)
	return a, nil
}

// OnStatusChange sets the callback invoked after labels change. It runs
// outside the state lock.
func (a *App) OnStatusChange(callback func(Status)) {
	a.mu.Lock()
	a.onStatus = callback
	a.mu.Unlock()
}

// Run connects upstream and runs the message and frame tasks until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.upstream == nil {
		return ErrNoUpstream
	}

	g, gctx := errgroup.WithContext(ctx)
	inbox := make(chan []byte, 64)

	a.upstream.OnStatus(a.setConnection)
	a.upstream.OnMessage(func(raw []byte) {
		select {
		case inbox <- raw:
		case <-gctx.Done():
		}
	})

	g.Go(func() error {
		return a.upstream.Run(gctx, a.cfg.URL)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case raw := <-inbox:
				_ = a.HandleMessage(raw)
			}
		}
	})
	g.Go(func() error {
		return NewRenderLoop(a.cfg.FrameInterval(), a.Frame).Run(gctx)
	})

	a.logger.Info("viewer running", "url", a.cfg.URL, "frame_rate", a.cfg.FrameRate)
	return g.Wait()
}

// HandleMessage decodes one raw payload and applies it. A malformed payload
// is logged and dropped with no state change.
func (a *App) HandleMessage(raw []byte) error {
	s, err := snapshot.Decode(raw)
	if err != nil {
		a.mu.Lock()
		a.stats.DecodeErrors++
		a.mu.Unlock()
		a.logger.Warn("dropping malformed snapshot", "error", err, "bytes", len(raw))
		return err
	}
	a.Apply(s)
	return nil
}

// Apply folds one decoded snapshot into the scene. Absent fields leave the
// matching state untouched.
func (a *App) Apply(s *snapshot.State) {
	a.mu.Lock()
	a.stats.Messages++
	a.stats.LastMessage = a.now()

	if light, ok := s.Light.Get(); ok {
		a.applyLightLocked(light)
	}
	if values, ok := s.Panels.Get(); ok {
		a.applyPanelsLocked(values)
	}

	labels := false
	if people, ok := s.People.Get(); ok {
		before := a.registry.Len()
		a.countOpsLocked(a.registry.Apply(people))
		labels = before != a.registry.Len()
	}
	if mode, ok := s.Mode.Get(); ok && mode != "" {
		a.mode = strings.ToUpper(mode)
		labels = true
	}
	if s.Status.Set {
		a.behavior = s.Status.Value
		labels = true
	}

	prevVersion := a.reports.Version()
	a.reports.Apply(s)
	labels = labels || prevVersion != a.reports.Version()

	var status Status
	callback := a.onStatus
	if labels {
		status = a.statusLocked()
	}
	a.mu.Unlock()

	if labels && callback != nil {
		callback(status)
	}
}

func (a *App) applyLightLocked(l snapshot.Light) {
	brightness := l.Brightness.Or(DefaultBrightness)
	radius := l.FalloffRadius.Or(DefaultFalloffRadius)

	st := &LightState{
		Position:     scene.Vec3{X: l.X, Y: l.Y, Z: l.Z},
		Scale:        LightScale(brightness),
		GlowOpacity:  GlowOpacity(brightness),
		FalloffScale: FalloffScale(radius),
	}
	a.engine.SetPosition(a.static.Light, l.X, l.Y, l.Z)
	a.engine.SetScale(a.static.Light, st.Scale)
	a.engine.SetOpacity(a.static.Glow, st.GlowOpacity)
	a.engine.SetScale(a.static.Falloff, st.FalloffScale)
	a.light = st
}

func (a *App) applyPanelsLocked(values []int) {
	for i, v := range values {
		if i >= len(a.static.Panels) {
			break
		}
		c := PanelColor(v)
		a.engine.SetColor(a.static.Panels[i], c.R, c.G, c.B)
		a.panels[i] = PanelState{Raw: v, Brightness: NormalizeDMX(v), Color: c}
	}
}

func (a *App) countOpsLocked(ops []EntityOp) {
	for _, op := range ops {
		switch op.Kind {
		case OpCreate:
			a.stats.Creates++
		case OpUpdate:
			a.stats.Updates++
		case OpDestroy:
			a.stats.Destroys++
		}
	}
}

// Frame runs one render tick: camera damping, the idle pulse, then a draw.
func (a *App) Frame(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	camera := a.orbit.Update()
	if a.light != nil {
		a.engine.SetScale(a.static.Glow, Pulse(now.UnixMilli()))
	}
	a.engine.RenderFrame(camera, a.static.Root)
	a.stats.Frames++
}

func (a *App) setConnection(state stream.State, label string) {
	a.mu.Lock()
	a.conn = state
	a.connLabel = label
	status := a.statusLocked()
	callback := a.onStatus
	a.mu.Unlock()

	a.logger.Info("connection status", "state", state.String(), "label", label)
	if callback != nil {
		callback(status)
	}
}

// SetTrendsVisible shows or hides the trends panel. Opening it redraws both
// sections from the cache. It reports the resulting visibility.
func (a *App) SetTrendsVisible(visible bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setTrendsVisibleLocked(visible)
}

// ToggleTrends flips the trends panel visibility.
func (a *App) ToggleTrends() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setTrendsVisibleLocked(!a.trendsVisibleLocked())
}

func (a *App) setTrendsVisibleLocked(visible bool) bool {
	t, ok := a.display.(visibilityToggler)
	if !ok {
		return false
	}
	t.SetVisible(visible)
	if visible {
		a.reports.Refresh()
	}
	return a.trendsVisibleLocked()
}

func (a *App) trendsVisibleLocked() bool {
	return a.display != nil && a.display.Visible()
}

// Orbit queues camera input for the next frames.
func (a *App) Orbit(azimuth, polar, zoom float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orbit.Rotate(azimuth, polar)
	if zoom != 0 {
		a.orbit.Zoom(zoom)
	}
}

// Status returns the current labels.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLocked()
}

func (a *App) statusLocked() Status {
	return Status{
		Connection:      a.conn.String(),
		ConnectionLabel: a.connLabel,
		Mode:            a.mode,
		Behavior:        a.behavior,
		People:          a.registry.Len(),
		ReportVersion:   a.reports.Version(),
		TrendsVisible:   a.trendsVisibleLocked(),
	}
}

// Stats returns message and frame counters.
func (a *App) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.stats
	st.Redisplays = a.reports.Redisplays()
	return st
}

// Panels returns a copy of the panel states in wire index order.
func (a *App) Panels() []PanelState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]PanelState(nil), a.panels...)
}

// Light returns the last applied light parameters.
func (a *App) Light() (LightState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.light == nil {
		return LightState{}, false
	}
	return *a.light, true
}

// TrackedIDs returns the ids of people currently in the scene.
func (a *App) TrackedIDs() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.IDs()
}

// PersonHandle returns the scene object tracking id.
func (a *App) PersonHandle(id int) (scene.Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.Handle(id)
}

// Reports returns the cached analytics payloads and the report version.
// The returned values are replaced, never mutated, by later snapshots.
func (a *App) Reports() (*snapshot.RealtimeTrends, *snapshot.DailyReport, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reports.Realtime(), a.reports.Daily(), a.reports.Version()
}

// Static returns the handles of the fixed scene objects.
func (a *App) Static() scene.Static { return a.static }

// Camera returns the camera used by the last frame.
func (a *App) Camera() scene.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orbit.Camera()
}
