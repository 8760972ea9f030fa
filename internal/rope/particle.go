package rope

// Particle is a Verlet point mass. Velocity is implicit in the difference
// between Position and PrevPosition.
type Particle struct {
	Position     Vec2 `json:"position"`
	PrevPosition Vec2 `json:"prev_position"`
}

// NewParticle returns a particle at rest at p.
func NewParticle(p Vec2) Particle {
	return Particle{Position: p, PrevPosition: p}
}

// Velocity derives the velocity over the last step. dt must be > 0.
func (p *Particle) Velocity(dt float64) Vec2 {
	return p.Position.Minus(p.PrevPosition).Times(1 / dt)
}

// SetVelocity rewrites the history so the next Velocity(dt) returns v.
func (p *Particle) SetVelocity(v Vec2, dt float64) {
	p.PrevPosition = p.Position.Minus(v.Times(dt))
}

// UpdatePosition advances the particle one step, keeping PrevPosition equal to
// the position of the immediately preceding tick.
func (p *Particle) UpdatePosition(next Vec2) {
	p.PrevPosition = p.Position
	p.Position = next
}
