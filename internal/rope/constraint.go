package rope

// Constraint is one unit of relaxation work. Solve may read and move every
// particle it references and must never fail.
type Constraint interface {
	Solve()
}

// DistanceConstraint keeps two particles RestLength apart by moving both ends
// half of the error. The particles are referenced weakly so ropes can be bound
// to each other without keeping a destroyed rope alive.
type DistanceConstraint struct {
	engine     *Engine
	start, end ParticleRef
	RestLength float64
}

func NewDistanceConstraint(e *Engine, start, end ParticleRef, restLength float64) *DistanceConstraint {
	return &DistanceConstraint{engine: e, start: start, end: end, RestLength: restLength}
}

func (c *DistanceConstraint) Solve() {
	start := c.engine.Particle(c.start)
	end := c.engine.Particle(c.end)
	if start == nil || end == nil {
		return
	}
	solveDistance(start, end, c.RestLength)
}

func solveDistance(start, end *Particle, restLength float64) {
	delta := end.Position.Minus(start.Position)
	dist := delta.Magnitude()
	if dist == 0 {
		return
	}
	diff := (dist - restLength) / dist
	correction := delta.Times(0.5 * diff)
	start.Position = start.Position.Plus(correction)
	end.Position = end.Position.Minus(correction)
}

// PinConstraint clamps a particle to a fixed position. It holds the particle
// directly.
type PinConstraint struct {
	Target   Vec2
	particle *Particle
}

func NewPinConstraint(target Vec2, p *Particle) *PinConstraint {
	return &PinConstraint{Target: target, particle: p}
}

func (c *PinConstraint) Solve() {
	if c.particle == nil {
		return
	}
	c.particle.Position = c.Target
}

// TransformPinConstraint clamps a particle to the live position of an
// external source.
type TransformPinConstraint struct {
	engine   *Engine
	particle ParticleRef
	source   PositionSource
}

func NewTransformPinConstraint(e *Engine, particle ParticleRef, source PositionSource) *TransformPinConstraint {
	return &TransformPinConstraint{engine: e, particle: particle, source: source}
}

func (c *TransformPinConstraint) Solve() {
	p := c.engine.Particle(c.particle)
	if p == nil || expired(c.source) {
		return
	}
	p.Position = c.source.Position()
}
