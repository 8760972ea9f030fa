package rope

import "fmt"

// RopeID is the registry handle of a rope within one Engine.
type RopeID uint64

// ParticleRef is a non-owning reference to a particle: the owning rope plus
// the particle index. It resolves to nothing once the rope is detached.
type ParticleRef struct {
	Rope  RopeID `json:"rope"`
	Index int    `json:"index"`
}

func (r ParticleRef) String() string {
	return fmt.Sprintf("rope %d[%d]", r.Rope, r.Index)
}

// Particle resolves ref, returning nil when the rope is gone or the index is
// out of range.
func (e *Engine) Particle(ref ParticleRef) *Particle {
	if e == nil {
		return nil
	}
	r, ok := e.ropes[ref.Rope]
	if !ok {
		return nil
	}
	return r.particle(ref.Index)
}

// ParticleSource exposes a particle of any registered rope as a
// PositionSource, so one rope can be pinned to another rope's particle.
type ParticleSource struct {
	engine *Engine
	ref    ParticleRef
}

func (e *Engine) ParticleSource(ref ParticleRef) *ParticleSource {
	return &ParticleSource{engine: e, ref: ref}
}

// Position returns the particle's world position, i.e. its local position
// through its rope's transform, or the zero vector when the particle no longer
// exists.
func (s *ParticleSource) Position() Vec2 {
	if s.engine == nil {
		return Vec2{}
	}
	r, ok := s.engine.Rope(s.ref.Rope)
	if !ok {
		return Vec2{}
	}
	p := r.particle(s.ref.Index)
	if p == nil {
		return Vec2{}
	}
	return r.transform.Xform(p.Position)
}

func (s *ParticleSource) Valid() bool {
	return s.engine.Particle(s.ref) != nil
}
