package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/playmatatu/ropesim/internal/rope"
)

// OverlapMargin widens rope proxies for overlap tracking so a rope resting on
// a body keeps it in its touching set between corrections.
const OverlapMargin = 2.0

var (
	ErrRopeNotFound   = errors.New("rope not found")
	ErrBodyNotFound   = errors.New("body not found")
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrDuplicateBody  = errors.New("body already exists")
	ErrInvalidShape   = errors.New("invalid shape")
	ErrEmptyRope      = errors.New("rope needs at least one point")
)

type ropeNode struct {
	rope     *rope.Rope
	line     *Line
	area     *ropeArea
	touching map[rope.BodyID]bool
}

// World is a headless host for ropes: it owns polylines, bodies and anchors,
// tracks overlaps and drives every rope once per Step. Not safe for
// concurrent use.
type World struct {
	engine  *rope.Engine
	narrow  NarrowPhase
	ropes   map[rope.RopeID]*ropeNode
	order   []rope.RopeID
	bodies  map[rope.BodyID]*Body
	anchors map[string]*Anchor
	tick    int64
}

func New(engine *rope.Engine) *World {
	if engine == nil {
		engine = rope.NewEngine()
	}
	return &World{
		engine:  engine,
		ropes:   make(map[rope.RopeID]*ropeNode),
		bodies:  make(map[rope.BodyID]*Body),
		anchors: make(map[string]*Anchor),
	}
}

func (w *World) Engine() *rope.Engine {
	return w.engine
}

func (w *World) Tick() int64 {
	return w.tick
}

// RopeOptions describes a rope to add.
type RopeOptions struct {
	Points   []rope.Vec2
	Width    float64
	Settings rope.Settings
	Origin   rope.Vec2
}

// AddRope builds and attaches a rope from opts.
func (w *World) AddRope(opts RopeOptions) (*rope.Rope, error) {
	if len(opts.Points) == 0 {
		return nil, ErrEmptyRope
	}
	node := &ropeNode{
		line:     NewLine(opts.Points, opts.Width),
		area:     &ropeArea{},
		touching: make(map[rope.BodyID]bool),
	}
	r := w.engine.NewRope(opts.Settings)
	r.SetTransform(rope.Translation(opts.Origin))
	if err := r.Attach(rope.Host{Line: node.line, Area: node.area, Contacts: w.narrow}); err != nil {
		r.Detach()
		return nil, fmt.Errorf("attach rope: %w", err)
	}
	node.rope = r
	w.ropes[r.ID()] = node
	w.order = append(w.order, r.ID())
	return r, nil
}

func (w *World) Rope(id rope.RopeID) (*rope.Rope, bool) {
	n, ok := w.ropes[id]
	if !ok {
		return nil, false
	}
	return n.rope, true
}

// RemoveRope detaches a rope. Bindings other ropes hold into it go inert.
func (w *World) RemoveRope(id rope.RopeID) error {
	n, ok := w.ropes[id]
	if !ok {
		return ErrRopeNotFound
	}
	n.rope.Detach()
	delete(w.ropes, id)
	for i, rid := range w.order {
		if rid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// BindRopes joins particle selfIndex of rope a to particle otherIndex of
// rope b.
func (w *World) BindRopes(a rope.RopeID, selfIndex int, b rope.RopeID, otherIndex int) error {
	ra, ok := w.Rope(a)
	if !ok {
		return ErrRopeNotFound
	}
	rb, ok := w.Rope(b)
	if !ok {
		return ErrRopeNotFound
	}
	return ra.BindToRope(rb, selfIndex, otherIndex)
}

// BindAnchor pins particle index of a rope to a named anchor.
func (w *World) BindAnchor(id rope.RopeID, index int, anchor string) error {
	r, ok := w.Rope(id)
	if !ok {
		return ErrRopeNotFound
	}
	a, ok := w.anchors[anchor]
	if !ok {
		return ErrAnchorNotFound
	}
	return r.BindToNode(&localSource{rope: r, source: a}, index)
}

// BindParticle pins particle index of a rope to a particle of another rope.
func (w *World) BindParticle(id rope.RopeID, index int, source rope.ParticleRef) error {
	r, ok := w.Rope(id)
	if !ok {
		return ErrRopeNotFound
	}
	if _, ok := w.Rope(source.Rope); !ok {
		return ErrRopeNotFound
	}
	if w.engine.Particle(source) == nil {
		return rope.ErrParticleNotFound
	}
	return r.BindToNode(&localSource{rope: r, source: w.engine.ParticleSource(source)}, index)
}

// SetAnchor creates or moves an anchor.
func (w *World) SetAnchor(name string, pos rope.Vec2) *Anchor {
	a, ok := w.anchors[name]
	if !ok {
		a = &Anchor{Name: name}
		w.anchors[name] = a
	}
	a.position = pos
	return a
}

// MoveAnchor moves an existing anchor.
func (w *World) MoveAnchor(name string, pos rope.Vec2) error {
	a, ok := w.anchors[name]
	if !ok {
		return ErrAnchorNotFound
	}
	a.position = pos
	return nil
}

func (w *World) RemoveAnchor(name string) error {
	a, ok := w.anchors[name]
	if !ok {
		return ErrAnchorNotFound
	}
	a.removed = true
	delete(w.anchors, name)
	return nil
}

func (w *World) AddBody(b *Body) error {
	if b == nil || len(b.shapes) == 0 {
		return ErrInvalidShape
	}
	for _, s := range b.shapes {
		if !validShape(s) {
			return ErrInvalidShape
		}
	}
	if _, exists := w.bodies[b.id]; exists {
		return ErrDuplicateBody
	}
	w.bodies[b.id] = b
	return nil
}

func (w *World) Body(id rope.BodyID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// RemoveBody drops a body and tells every rope touching it that it left.
func (w *World) RemoveBody(id rope.BodyID) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrBodyNotFound
	}
	for _, n := range w.ropes {
		if n.touching[id] {
			n.rope.BodyExited(b)
			delete(n.touching, id)
		}
	}
	b.removed = true
	delete(w.bodies, id)
	return nil
}

// Step advances the world by dt: bodies first, then overlap bookkeeping, then
// every rope in creation order.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.tick++
	gravity := w.engine.Gravity()
	for _, id := range w.bodyIDs() {
		w.bodies[id].integrate(dt, gravity)
	}
	for _, id := range w.order {
		n := w.ropes[id]
		w.updateOverlaps(n)
		n.rope.Tick(dt)
	}
}

func (w *World) updateOverlaps(n *ropeNode) {
	if !n.rope.Settings().UseColliders {
		return
	}
	for _, id := range w.bodyIDs() {
		b := w.bodies[id]
		box, ok := b.bounds()
		now := ok && n.area.overlaps(box, OverlapMargin)
		switch {
		case now && !n.touching[id]:
			n.touching[id] = true
			n.rope.BodyEntered(b)
		case !now && n.touching[id]:
			delete(n.touching, id)
			n.rope.BodyExited(b)
		}
	}
}

func (w *World) bodyIDs() []rope.BodyID {
	ids := make([]rope.BodyID, 0, len(w.bodies))
	for id := range w.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
