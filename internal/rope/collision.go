package rope

const (
	// RigidMassSplit is the share of a contact a particle absorbs against a
	// rigid body. Particles carry no mass, so both sides count as equal.
	RigidMassSplit = 0.5
	// RigidCorrectionFactor scales the corrective velocity handed to rigid
	// bodies. Tuned for look, not momentum conservation.
	RigidCorrectionFactor = 0.1
)

// CollisionResolver pushes particles out of touching bodies and hands
// corrective impulses to rigid ones.
type CollisionResolver struct {
	touching []Body
}

// BodyEntered records a body as touching. Repeated enters stack.
func (cr *CollisionResolver) BodyEntered(b Body) {
	if b == nil {
		return
	}
	cr.touching = append(cr.touching, b)
}

// BodyExited drops every entry for the body.
func (cr *CollisionResolver) BodyExited(b Body) {
	if b == nil {
		return
	}
	id := b.ID()
	kept := cr.touching[:0]
	for _, t := range cr.touching {
		if t.ID() != id {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(cr.touching); i++ {
		cr.touching[i] = nil
	}
	cr.touching = kept
}

// Touching returns the number of touching entries.
func (cr *CollisionResolver) Touching() int {
	return len(cr.touching)
}

func (cr *CollisionResolver) reset() {
	cr.touching = nil
}

type bodyShape struct {
	body  Body
	shape Shape
}

// Resolve corrects penetrations between particles (with their proxies placed
// at ropeXform.TranslatedLocal(position)) and every shape of every touching
// body.
func (cr *CollisionResolver) Resolve(particles []Particle, proxies []Shape, ropeXform Transform, np NarrowPhase, dt float64) {
	if np == nil || len(proxies) == 0 || dt <= 0 {
		return
	}

	var shapes []bodyShape
	for _, b := range cr.touching {
		if expired(b) {
			continue
		}
		for _, s := range b.Shapes() {
			if s != nil {
				shapes = append(shapes, bodyShape{body: b, shape: s})
			}
		}
	}

	for _, bs := range shapes {
		cr.resolveShape(particles, proxies, ropeXform, np, bs, dt)
	}
}

func (cr *CollisionResolver) resolveShape(particles []Particle, proxies []Shape, ropeXform Transform, np NarrowPhase, bs bodyShape, dt float64) {
	n := len(proxies)
	if len(particles) < n {
		n = len(particles)
	}
	for i := 0; i < n; i++ {
		p := &particles[i]
		xform := ropeXform.TranslatedLocal(p.Position)
		contacts := np.CollideAndGetContacts(bs.shape, bs.body.Transform(), proxies[i], xform)
		if len(contacts)%2 != 0 {
			continue
		}
		for c := 0; c < len(contacts); c += 2 {
			contact := contacts[c+1].Minus(contacts[c])
			respond(p, bs.body, contact, dt)
		}
	}
}

// respond applies one contact vector to a particle according to the body
// kind.
func respond(p *Particle, body Body, contact Vec2, dt float64) {
	switch body.Kind() {
	case BodyRigid:
		p.Position = p.Position.Minus(contact.Times(RigidMassSplit))
		rb, ok := body.(ImpulseReceiver)
		if !ok {
			return
		}
		correction := contact.Times(RigidCorrectionFactor / dt)
		rb.ApplyImpulse(correction.Times(rb.Mass()))
	case BodyStatic:
		p.Position = p.Position.Minus(contact)
	}
}
