package world

import "github.com/playmatatu/ropesim/internal/rope"

// Anchor is a named point ropes can be bound to. Moving it drags every
// particle bound to it on the next tick.
type Anchor struct {
	Name     string
	position rope.Vec2
	removed  bool
}

func (a *Anchor) Position() rope.Vec2 {
	return a.position
}

func (a *Anchor) Valid() bool {
	return !a.removed
}

// localSource reads a world-space source in the frame of the rope it is bound
// to. The rope transform is read on every solve.
type localSource struct {
	rope   *rope.Rope
	source rope.PositionSource
}

func (s *localSource) Position() rope.Vec2 {
	return s.rope.Transform().AffineInverse().Xform(s.source.Position())
}

func (s *localSource) Valid() bool {
	if v, ok := s.source.(interface{ Valid() bool }); ok {
		return v.Valid()
	}
	return true
}
