package rope

// Integrate advances every particle one Verlet step under a constant
// acceleration. dt must be > 0.
func Integrate(particles []Particle, dt float64, gravity Vec2) {
	gravityDisplacement := gravity.Times(0.5 * dt * dt)
	for i := range particles {
		p := &particles[i]
		velocity := p.Velocity(dt)
		next := p.Position.Plus(velocity.Times(dt).Plus(gravityDisplacement))
		p.UpdatePosition(next)
	}
}
