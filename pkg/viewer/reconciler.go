package viewer

import (
	"slices"

	"github.com/teslashibe/go-dropceiling/pkg/scene"
	"github.com/teslashibe/go-dropceiling/pkg/snapshot"
)

// OpKind is the type of an entity operation.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDestroy
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// EntityOp is one change the registry must make to the scene.
type EntityOp struct {
	Kind     OpKind
	ID       int
	Position scene.Vec3 // anchor position; zero for destroys
}

// Diff computes the operations that bring a set of tracked ids in line with a
// new people list. Destroys come first in ascending id order, then one create
// or update per reading in list order. A repeated id within the list becomes
// an update after its first appearance.
func Diff(tracked map[int]scene.Handle, people []snapshot.PersonReading) []EntityOp {
	seen := make(map[int]bool, len(people))
	for _, p := range people {
		seen[p.ID] = true
	}

	ops := make([]EntityOp, 0, len(people)+len(tracked))

	gone := make([]int, 0)
	for id := range tracked {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	slices.Sort(gone)
	for _, id := range gone {
		ops = append(ops, EntityOp{Kind: OpDestroy, ID: id})
	}

	created := make(map[int]bool)
	for _, p := range people {
		kind := OpUpdate
		if _, ok := tracked[p.ID]; !ok && !created[p.ID] {
			kind = OpCreate
			created[p.ID] = true
		}
		ops = append(ops, EntityOp{Kind: kind, ID: p.ID, Position: anchor(p)})
	}
	return ops
}

func anchor(p snapshot.PersonReading) scene.Vec3 {
	return scene.Vec3{X: p.X, Y: p.Y + PersonAnchorOffset, Z: p.Z}
}

// Registry owns the scene objects of tracked people.
type Registry struct {
	engine scene.Engine
	root   scene.Handle
	byID   map[int]scene.Handle
}

// NewRegistry creates an empty registry that attaches people under root.
func NewRegistry(engine scene.Engine, root scene.Handle) *Registry {
	return &Registry{
		engine: engine,
		root:   root,
		byID:   make(map[int]scene.Handle),
	}
}

// Apply reconciles the registry with a present people list and returns the
// operations it executed. An empty list removes everyone.
func (r *Registry) Apply(people []snapshot.PersonReading) []EntityOp {
	ops := Diff(r.byID, people)
	for _, op := range ops {
		switch op.Kind {
		case OpDestroy:
			r.engine.DestroyObject(r.byID[op.ID])
			delete(r.byID, op.ID)
		case OpCreate:
			r.byID[op.ID] = r.engine.CreateObject(scene.KindPerson, scene.PersonParams(r.root, op.ID))
			fallthrough
		case OpUpdate:
			r.engine.SetPosition(r.byID[op.ID], op.Position.X, op.Position.Y, op.Position.Z)
		}
	}
	return ops
}

// Handle returns the scene object tracking id.
func (r *Registry) Handle(id int) (scene.Handle, bool) {
	h, ok := r.byID[id]
	return h, ok
}

// IDs returns the tracked ids in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of tracked people.
func (r *Registry) Len() int { return len(r.byID) }
