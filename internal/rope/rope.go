package rope

import "errors"

// BindRestLength is the rest length of constraints created by BindToRope.
const BindRestLength = 1.0

var (
	ErrParticleNotFound = errors.New("particle index out of range")
	ErrNotAttached      = errors.New("rope not attached")
	ErrForeignRope      = errors.New("rope belongs to another engine")
	ErrNoLine           = errors.New("rope host has no polyline")
)

// Settings is the per-rope configuration consumed at attach time.
type Settings struct {
	SegmentLength float64 `json:"segment_length"`
	PinIndices    []int   `json:"pin_indices"`
	UseColliders  bool    `json:"use_colliders"`
}

// Rope is a chain of particles joined by distance constraints. Particles are
// owned by the rope in a contiguous slice; everything else refers to them by
// index through the Engine.
type Rope struct {
	id       RopeID
	engine   *Engine
	settings Settings

	host      Host
	attached  bool
	transform Transform

	particles   []Particle
	proxies     []Shape
	constraints []Constraint
	collisions  CollisionResolver

	iterations int
	gravity    Vec2
}

func (r *Rope) ID() RopeID {
	return r.id
}

func (r *Rope) Settings() Settings {
	return r.settings
}

func (r *Rope) Attached() bool {
	return r.attached
}

func (r *Rope) Transform() Transform {
	return r.transform
}

// SetTransform places the rope in the world. Particle positions stay local.
func (r *Rope) SetTransform(t Transform) {
	r.transform = t
}

// Ref returns a reference to particle index of this rope.
func (r *Rope) Ref(index int) ParticleRef {
	return ParticleRef{Rope: r.id, Index: index}
}

// Len returns the particle count.
func (r *Rope) Len() int {
	return len(r.particles)
}

// Positions returns a copy of the particle positions.
func (r *Rope) Positions() []Vec2 {
	out := make([]Vec2, len(r.particles))
	for i := range r.particles {
		out[i] = r.particles[i].Position
	}
	return out
}

// Particle returns a copy of particle i.
func (r *Rope) Particle(i int) (Particle, bool) {
	p := r.particle(i)
	if p == nil {
		return Particle{}, false
	}
	return *p, true
}

// SetParticleVelocity imposes a velocity on particle i for the next tick.
func (r *Rope) SetParticleVelocity(i int, v Vec2, dt float64) error {
	p := r.particle(i)
	if p == nil {
		return ErrParticleNotFound
	}
	p.SetVelocity(v, dt)
	return nil
}

func (r *Rope) particle(i int) *Particle {
	if i < 0 || i >= len(r.particles) {
		return nil
	}
	return &r.particles[i]
}

func (r *Rope) ConstraintCount() int {
	return len(r.constraints)
}

func (r *Rope) Constraints() []Constraint {
	return r.constraints
}

// Attach (re)builds the rope from the host's polyline: one particle per point,
// a distance constraint per adjacent pair and a pin per valid pin index.
func (r *Rope) Attach(host Host) error {
	if host.Line == nil {
		return ErrNoLine
	}
	if r.engine.ropes[r.id] != r {
		r.engine.ropes[r.id] = r
	}

	r.host = host
	r.iterations = r.engine.IterationCount
	r.particles = r.particles[:0]
	r.proxies = nil
	r.constraints = nil
	r.collisions.reset()

	colliders := r.settings.UseColliders && host.Area != nil
	if colliders {
		host.Area.ClearShapes()
	}

	points := host.Line.Points()
	radius := host.Line.Width() / 2
	for _, pt := range points {
		r.particles = append(r.particles, NewParticle(pt))
		if !colliders {
			continue
		}
		proxy := &CircleShape{Radius: radius}
		host.Area.AddShape(proxy)
		r.proxies = append(r.proxies, proxy)
	}

	for i := 0; i+1 < len(r.particles); i++ {
		r.AddConstraint(NewDistanceConstraint(r.engine, r.Ref(i), r.Ref(i+1), r.settings.SegmentLength))
	}

	for _, idx := range r.settings.PinIndices {
		p := r.particle(idx)
		if p == nil {
			continue
		}
		r.AddConstraint(NewPinConstraint(p.Position, p))
	}

	r.attached = true
	r.syncProxies()
	return nil
}

// Detach unregisters the rope. References other ropes hold into it resolve
// to nothing from now on.
func (r *Rope) Detach() {
	r.engine.unregister(r.id)
	if r.host.Area != nil && len(r.proxies) > 0 {
		r.host.Area.ClearShapes()
	}
	r.attached = false
	r.proxies = nil
	r.collisions.reset()
}

// AddConstraint appends c; it is solved after every existing constraint.
func (r *Rope) AddConstraint(c Constraint) {
	r.constraints = append(r.constraints, c)
}

// BindToRope joins particle selfIndex of r to particle otherIndex of other
// with a unit-length distance constraint.
func (r *Rope) BindToRope(other *Rope, selfIndex, otherIndex int) error {
	if other == nil {
		return ErrParticleNotFound
	}
	if other.engine != r.engine {
		return ErrForeignRope
	}
	if !r.attached || !other.attached {
		return ErrNotAttached
	}
	if r.particle(selfIndex) == nil || other.particle(otherIndex) == nil {
		return ErrParticleNotFound
	}
	r.AddConstraint(NewDistanceConstraint(r.engine, r.Ref(selfIndex), other.Ref(otherIndex), BindRestLength))
	return nil
}

// BindToNode pins particle atIndex to the live position of source.
func (r *Rope) BindToNode(source PositionSource, atIndex int) error {
	if !r.attached {
		return ErrNotAttached
	}
	if source == nil || r.particle(atIndex) == nil {
		return ErrParticleNotFound
	}
	r.AddConstraint(NewTransformPinConstraint(r.engine, r.Ref(atIndex), source))
	return nil
}

func (r *Rope) BodyEntered(b Body) {
	r.collisions.BodyEntered(b)
}

func (r *Rope) BodyExited(b Body) {
	r.collisions.BodyExited(b)
}

// TouchingBodies returns the size of the touching-body multiset.
func (r *Rope) TouchingBodies() int {
	return r.collisions.Touching()
}

// ProxyRadius returns the proxy radius, or 0 without colliders.
func (r *Rope) ProxyRadius() float64 {
	if len(r.proxies) == 0 {
		return 0
	}
	if c, ok := r.proxies[0].(*CircleShape); ok {
		return c.Radius
	}
	return 0
}

// Tick runs one simulation step: integrate, relax, collide, then push the
// result to the collaborators. Non-positive dt is ignored.
func (r *Rope) Tick(dt float64) {
	if !r.attached || dt <= 0 {
		return
	}
	Integrate(r.particles, dt, r.gravity)
	Relax(r.constraints, r.iterations)
	if r.settings.UseColliders {
		r.collisions.Resolve(r.particles, r.proxies, r.transform, r.host.Contacts, dt)
	}
	r.syncProxies()
	r.render()
}

func (r *Rope) syncProxies() {
	if r.host.Area == nil {
		return
	}
	for i := range r.proxies {
		r.host.Area.SetShapeTransform(i, r.transform.TranslatedLocal(r.particles[i].Position))
	}
}

func (r *Rope) render() {
	if r.host.Line == nil {
		return
	}
	r.host.Line.SetPoints(r.Positions())
}
