package scene

import (
	"sort"
	"sync"
)

// Object is one node in the headless graph.
type Object struct {
	Handle   Handle  `json:"handle"`
	Kind     Kind    `json:"kind"`
	Parent   Handle  `json:"parent,omitempty"`
	Params   Params  `json:"params,omitempty"`
	Position Vec3    `json:"position"`
	Scale    float64 `json:"scale"`
	Color    Color   `json:"color"`
	Opacity  float64 `json:"opacity"`
}

// Frame is what a render pass produced: the camera and a copy of every object.
type Frame struct {
	Number  uint64   `json:"frame"`
	Camera  Camera   `json:"camera"`
	Root    Handle   `json:"root"`
	Objects []Object `json:"objects"`
}

// Graph is a headless Engine. It keeps objects in memory and publishes a
// Frame on every RenderFrame, so a dashboard or test can observe exactly
// what a GPU renderer would have drawn.
type Graph struct {
	mu      sync.RWMutex
	next    Handle
	objects map[Handle]*Object
	frames  uint64
	last    *Frame

	onRender func(Frame)
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{objects: make(map[Handle]*Object)}
}

// OnRender sets the callback invoked after every RenderFrame. The callback
// runs on the render goroutine and must not block.
func (g *Graph) OnRender(callback func(Frame)) {
	g.mu.Lock()
	g.onRender = callback
	g.mu.Unlock()
}

// CreateObject implements Engine. A "parent" param of type Handle attaches
// the object to an existing node.
func (g *Graph) CreateObject(kind Kind, params Params) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	obj := &Object{
		Handle:  g.next,
		Kind:    kind,
		Params:  params,
		Scale:   1,
		Color:   Color{R: 1, G: 1, B: 1},
		Opacity: 1,
	}
	if p, ok := params["parent"].(Handle); ok {
		if _, exists := g.objects[p]; exists {
			obj.Parent = p
		}
	}
	if c, ok := params["color"].(Color); ok {
		obj.Color = c
	}
	if o, ok := params["opacity"].(float64); ok {
		obj.Opacity = o
	}
	g.objects[obj.Handle] = obj
	return obj.Handle
}

// DestroyObject implements Engine. Children are released with their parent.
func (g *Graph) DestroyObject(h Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyLocked(h)
}

func (g *Graph) destroyLocked(h Handle) {
	if _, ok := g.objects[h]; !ok {
		return
	}
	delete(g.objects, h)
	for child, obj := range g.objects {
		if obj.Parent == h {
			g.destroyLocked(child)
		}
	}
}

// SetPosition implements Engine.
func (g *Graph) SetPosition(h Handle, x, y, z float64) {
	g.update(h, func(o *Object) { o.Position = Vec3{X: x, Y: y, Z: z} })
}

// SetScale implements Engine.
func (g *Graph) SetScale(h Handle, factor float64) {
	g.update(h, func(o *Object) { o.Scale = factor })
}

// SetColor implements Engine.
func (g *Graph) SetColor(h Handle, r, gr, b float64) {
	g.update(h, func(o *Object) { o.Color = Color{R: r, G: gr, B: b} })
}

// SetOpacity implements Engine.
func (g *Graph) SetOpacity(h Handle, value float64) {
	g.update(h, func(o *Object) { o.Opacity = value })
}

func (g *Graph) update(h Handle, fn func(*Object)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if obj, ok := g.objects[h]; ok {
		fn(obj)
	}
}

// RenderFrame implements Engine by capturing the current graph.
func (g *Graph) RenderFrame(camera Camera, root Handle) {
	g.mu.Lock()
	g.frames++
	frame := Frame{
		Number:  g.frames,
		Camera:  camera,
		Root:    root,
		Objects: g.snapshotLocked(),
	}
	g.last = &frame
	cb := g.onRender
	g.mu.Unlock()

	if cb != nil {
		cb(frame)
	}
}

func (g *Graph) snapshotLocked() []Object {
	objs := make([]Object, 0, len(g.objects))
	for _, o := range g.objects {
		objs = append(objs, *o)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Handle < objs[j].Handle })
	return objs
}

// Object returns a copy of one object.
func (g *Graph) Object(h Handle) (Object, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	obj, ok := g.objects[h]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// Objects returns copies of every live object ordered by handle.
func (g *Graph) Objects() []Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// Count returns the number of live objects of a kind.
func (g *Graph) Count(kind Kind) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, o := range g.objects {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// LastFrame returns the most recent render, or nil before the first frame.
func (g *Graph) LastFrame() *Frame {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last
}

// FrameCount returns how many frames have been rendered.
func (g *Graph) FrameCount() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frames
}
