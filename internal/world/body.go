package world

import "github.com/playmatatu/ropesim/internal/rope"

// Body is a world-owned physics body. Static bodies never move, kinematic
// bodies move at a constant velocity and rigid bodies integrate gravity and
// the impulses ropes hand them.
type Body struct {
	id           rope.BodyID
	kind         rope.BodyKind
	Position     rope.Vec2
	Velocity     rope.Vec2
	mass         float64
	GravityScale float64
	shapes       []rope.Shape

	pending rope.Vec2
	removed bool
}

// NewBody creates a body. Non-positive masses become 1.
func NewBody(id rope.BodyID, kind rope.BodyKind, position rope.Vec2, mass float64, shapes ...rope.Shape) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		id:           id,
		kind:         kind,
		Position:     position,
		mass:         mass,
		GravityScale: 1,
		shapes:       shapes,
	}
}

func (b *Body) ID() rope.BodyID {
	return b.id
}

func (b *Body) Kind() rope.BodyKind {
	return b.kind
}

func (b *Body) Transform() rope.Transform {
	return rope.Translation(b.Position)
}

func (b *Body) Shapes() []rope.Shape {
	return b.shapes
}

func (b *Body) Mass() float64 {
	return b.mass
}

// ApplyImpulse queues an impulse for the next integration step.
func (b *Body) ApplyImpulse(impulse rope.Vec2) {
	b.pending = b.pending.Plus(impulse)
}

// Valid is false once the body has been removed from its world.
func (b *Body) Valid() bool {
	return !b.removed
}

// PendingImpulse returns the impulse accumulated since the last step.
func (b *Body) PendingImpulse() rope.Vec2 {
	return b.pending
}

func (b *Body) bounds() (AABB, bool) {
	xf := b.Transform()
	var box AABB
	found := false
	for _, s := range b.shapes {
		sb, ok := shapeBounds(s, xf)
		if !ok {
			continue
		}
		if !found {
			box, found = sb, true
			continue
		}
		box = box.merge(sb)
	}
	return box, found
}

func (b *Body) integrate(dt float64, gravity rope.Vec2) {
	switch b.kind {
	case rope.BodyRigid:
		b.Velocity = b.Velocity.Plus(b.pending.Times(1 / b.mass)).Plus(gravity.Times(b.GravityScale * dt))
		b.Position = b.Position.Plus(b.Velocity.Times(dt))
	case rope.BodyKinematic:
		b.Position = b.Position.Plus(b.Velocity.Times(dt))
	}
	b.pending = rope.Vec2{}
}
