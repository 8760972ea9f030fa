package rope

import (
	"errors"
	"math"
	"testing"
)

func zeroGravityEngine() *Engine {
	e := NewEngine()
	e.GravityMagnitude = 0
	return e
}

func countConstraints(r *Rope) (distance, pins int) {
	for _, c := range r.Constraints() {
		switch c.(type) {
		case *DistanceConstraint:
			distance++
		case *PinConstraint:
			pins++
		}
	}
	return distance, pins
}

func TestAttachBuildsChain(t *testing.T) {
	tests := []struct {
		name     string
		points   int
		pins     []int
		wantDist int
		wantPins int
	}{
		{"six points two valid pins", 6, []int{0, 3, 99, -1}, 5, 2},
		{"single point", 1, []int{0}, 0, 1},
		{"empty polyline", 0, []int{0}, 0, 0},
		{"no pins", 4, nil, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			r := e.NewRope(Settings{SegmentLength: 10, PinIndices: tt.pins})
			if err := r.Attach(Host{Line: horizontalLine(tt.points, 10)}); err != nil {
				t.Fatalf("attach: %v", err)
			}
			if r.Len() != tt.points {
				t.Fatalf("particles = %d, want %d", r.Len(), tt.points)
			}
			d, p := countConstraints(r)
			if d != tt.wantDist || p != tt.wantPins {
				t.Fatalf("constraints = %d distance + %d pins, want %d + %d", d, p, tt.wantDist, tt.wantPins)
			}
		})
	}
}

func TestAttachWithoutLineFails(t *testing.T) {
	r := NewEngine().NewRope(Settings{})
	if err := r.Attach(Host{}); !errors.Is(err, ErrNoLine) {
		t.Fatalf("err = %v, want ErrNoLine", err)
	}
}

func TestReattachRebuilds(t *testing.T) {
	e := NewEngine()
	r := e.NewRope(Settings{SegmentLength: 5, PinIndices: []int{0}})
	r.Attach(Host{Line: horizontalLine(4, 5)})
	r.Attach(Host{Line: horizontalLine(3, 5)})
	if r.Len() != 3 || r.ConstraintCount() != 3 {
		t.Fatalf("after re-attach: %d particles, %d constraints", r.Len(), r.ConstraintCount())
	}
}

func TestTickSettlesPinnedChain(t *testing.T) {
	e := zeroGravityEngine()
	r := e.NewRope(Settings{SegmentLength: 10, PinIndices: []int{0}})
	line := horizontalLine(5, 12)
	if err := r.Attach(Host{Line: line}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	pin := line.points[0]

	dt := 1.0 / 60
	for tick := 0; tick < 60; tick++ {
		r.Tick(dt)
		if p := r.Positions()[0]; !p.IsEqualTo(pin) {
			t.Fatalf("tick %d: pinned particle at %+v, want %+v", tick, p, pin)
		}
	}

	pos := r.Positions()
	for i := 0; i+1 < len(pos); i++ {
		d := pos[i].Distance(pos[i+1])
		if math.Abs(d-10) > 1e-3 {
			t.Fatalf("segment %d length %v, want 10±1e-3", i, d)
		}
	}
	if len(line.rendered) != 60 {
		t.Fatalf("rendered %d frames, want 60", len(line.rendered))
	}
}

func TestTickIgnoresNonPositiveDt(t *testing.T) {
	r := NewEngine().NewRope(Settings{SegmentLength: 10})
	line := horizontalLine(3, 10)
	r.Attach(Host{Line: line})
	before := r.Positions()

	r.Tick(0)
	r.Tick(-1)
	after := r.Positions()
	for i := range before {
		if !before[i].IsEqualTo(after[i]) {
			t.Fatalf("particle %d moved on non-positive dt", i)
		}
	}
}

func TestGravityPullsFreeRope(t *testing.T) {
	r := NewEngine().NewRope(Settings{SegmentLength: 10, PinIndices: []int{0}})
	r.Attach(Host{Line: horizontalLine(4, 10)})
	for i := 0; i < 30; i++ {
		r.Tick(1.0 / 60)
	}
	if end := r.Positions()[3]; end.Y <= 0 {
		t.Fatalf("free end did not fall: %+v", end)
	}
}

func TestBindToRope(t *testing.T) {
	e := zeroGravityEngine()
	a := e.NewRope(Settings{SegmentLength: 10})
	b := e.NewRope(Settings{SegmentLength: 10})
	a.Attach(Host{Line: horizontalLine(3, 10)})
	b.Attach(Host{Line: &testLine{points: []Vec2{NewVec2(20, 30), NewVec2(30, 30)}}})

	if err := a.BindToRope(b, 2, 0); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := a.BindToRope(b, 3, 0); !errors.Is(err, ErrParticleNotFound) {
		t.Fatalf("out of range self index: err = %v", err)
	}
	if err := a.BindToRope(b, 0, 7); !errors.Is(err, ErrParticleNotFound) {
		t.Fatalf("out of range other index: err = %v", err)
	}

	// Rope IDs are per engine: the foreign rope shares a's ID.
	foreign := zeroGravityEngine().NewRope(Settings{SegmentLength: 10})
	foreign.Attach(Host{Line: horizontalLine(2, 10)})
	if foreign.ID() != a.ID() {
		t.Fatalf("foreign id = %d, want %d", foreign.ID(), a.ID())
	}
	if err := a.BindToRope(foreign, 1, 0); !errors.Is(err, ErrForeignRope) {
		t.Fatalf("foreign rope: err = %v", err)
	}

	idle := e.NewRope(Settings{SegmentLength: 10})
	if idle.Attached() {
		t.Fatalf("rope attached before Attach")
	}
	if err := a.BindToRope(idle, 0, 0); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("unattached rope: err = %v", err)
	}
	if a.ConstraintCount() != 3 {
		t.Fatalf("constraints = %d, want 3", a.ConstraintCount())
	}

	for i := 0; i < 20; i++ {
		a.Tick(1.0 / 60)
	}
	pa, _ := a.Particle(2)
	pb, _ := b.Particle(0)
	if d := pa.Position.Distance(pb.Position); d > 5 {
		t.Fatalf("bound particles still %v apart", d)
	}
}

func TestDetachedRopeBindingIsNoop(t *testing.T) {
	e := zeroGravityEngine()
	a := e.NewRope(Settings{SegmentLength: 10})
	b := e.NewRope(Settings{SegmentLength: 10})
	a.Attach(Host{Line: horizontalLine(2, 10)})
	b.Attach(Host{Line: &testLine{points: []Vec2{NewVec2(0, 50)}}})
	a.BindToRope(b, 0, 0)

	b.Detach()
	if _, ok := e.Rope(b.ID()); ok {
		t.Fatalf("detached rope still registered")
	}
	a.Tick(1.0 / 60)
	for i, p := range a.Positions() {
		if !p.IsFinite() || p.Y != 0 {
			t.Fatalf("particle %d disturbed by detached binding: %+v", i, p)
		}
	}
}

func TestBindToNode(t *testing.T) {
	e := zeroGravityEngine()
	r := e.NewRope(Settings{SegmentLength: 10})
	r.Attach(Host{Line: horizontalLine(3, 10)})
	src := &fixedSource{pos: NewVec2(40, -5)}

	if err := r.BindToNode(src, 5); !errors.Is(err, ErrParticleNotFound) {
		t.Fatalf("err = %v, want ErrParticleNotFound", err)
	}
	if err := r.BindToNode(src, 2); err != nil {
		t.Fatalf("bind: %v", err)
	}
	r.Tick(1.0 / 60)
	if p := r.Positions()[2]; !p.IsEqualTo(src.pos) {
		t.Fatalf("bound particle at %+v, want %+v", p, src.pos)
	}

	r.Detach()
	if err := r.BindToNode(src, 0); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("detached rope: err = %v, want ErrNotAttached", err)
	}
}

func attachCollidingRope(t *testing.T, contacts []Vec2) (*Rope, *testArea, *fixedContacts) {
	t.Helper()
	e := zeroGravityEngine()
	r := e.NewRope(Settings{UseColliders: true})
	area := &testArea{}
	np := &fixedContacts{contacts: contacts}
	line := &testLine{points: []Vec2{NewVec2(0, 0)}, width: 6}
	if err := r.Attach(Host{Line: line, Area: area, Contacts: np}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return r, area, np
}

func TestCollisionStaticBody(t *testing.T) {
	v := NewVec2(0, 2.5)
	r, area, _ := attachCollidingRope(t, []Vec2{NewVec2(0, 3), NewVec2(0, 5.5)})
	if len(area.shapes) != 1 {
		t.Fatalf("proxies = %d, want 1", len(area.shapes))
	}
	if c, ok := area.shapes[0].(*CircleShape); !ok || c.Radius != 3 {
		t.Fatalf("proxy = %#v, want circle radius 3", area.shapes[0])
	}

	r.BodyEntered(&testBody{id: "floor", kind: BodyStatic})
	r.Tick(1.0 / 60)

	want := Vec2{}.Minus(v)
	if p := r.Positions()[0]; !p.IsEqualTo(want) {
		t.Fatalf("particle at %+v, want %+v", p, want)
	}
	if xf := area.xforms[0]; !xf.Origin.IsEqualTo(want) {
		t.Fatalf("proxy not resynced: %+v", xf.Origin)
	}
}

func TestCollisionRigidBody(t *testing.T) {
	dt := 1.0 / 60
	v := NewVec2(1, -2)
	r, _, _ := attachCollidingRope(t, []Vec2{NewVec2(4, 4), NewVec2(5, 2)})
	body := &testBody{id: "crate", kind: BodyRigid, mass: 3}
	r.BodyEntered(body)
	r.Tick(dt)

	want := Vec2{}.Minus(v.Times(0.5))
	if p := r.Positions()[0]; !p.IsEqualTo(want) {
		t.Fatalf("particle at %+v, want %+v", p, want)
	}
	if len(body.impulses) != 1 {
		t.Fatalf("impulses = %d, want 1", len(body.impulses))
	}
	wantImpulse := v.Times(0.1 / dt).Times(3)
	if !body.impulses[0].IsEqualTo(wantImpulse) {
		t.Fatalf("impulse = %+v, want %+v", body.impulses[0], wantImpulse)
	}
}

func TestCollisionIgnoredCases(t *testing.T) {
	tests := []struct {
		name     string
		contacts []Vec2
		body     *testBody
	}{
		{"kinematic body", []Vec2{NewVec2(0, 0), NewVec2(0, 1)}, &testBody{id: "k", kind: BodyKinematic}},
		{"odd contact count", []Vec2{NewVec2(0, 0), NewVec2(0, 1), NewVec2(3, 3)}, &testBody{id: "s", kind: BodyStatic}},
		{"expired body", []Vec2{NewVec2(0, 0), NewVec2(0, 1)}, &testBody{id: "gone", kind: BodyStatic, dead: true}},
		{"no contacts", nil, &testBody{id: "s", kind: BodyStatic}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := attachCollidingRope(t, tt.contacts)
			r.BodyEntered(tt.body)
			r.Tick(1.0 / 60)
			if p := r.Positions()[0]; !p.IsZero() {
				t.Fatalf("particle moved to %+v", p)
			}
		})
	}
}

func TestBodyExitRemovesAllEntries(t *testing.T) {
	r, _, _ := attachCollidingRope(t, nil)
	floor := &testBody{id: "floor", kind: BodyStatic}
	r.BodyEntered(floor)
	r.BodyEntered(floor)
	r.BodyEntered(&testBody{id: "wall", kind: BodyStatic})
	if r.TouchingBodies() != 3 {
		t.Fatalf("touching = %d, want 3", r.TouchingBodies())
	}
	r.BodyExited(floor)
	if r.TouchingBodies() != 1 {
		t.Fatalf("touching after exit = %d, want 1", r.TouchingBodies())
	}
}

func TestProxyTransformUsesRopeTransform(t *testing.T) {
	r, _, np := attachCollidingRope(t, nil)
	r.SetTransform(Translation(NewVec2(100, 50)))
	r.BodyEntered(&testBody{id: "floor", kind: BodyStatic})
	r.Tick(1.0 / 60)

	if len(np.queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(np.queries))
	}
	if o := np.queries[0].Origin; !o.IsEqualTo(NewVec2(100, 50)) {
		t.Fatalf("proxy query origin = %+v", o)
	}
}

func TestCollidersDisabledSkipsResolution(t *testing.T) {
	e := zeroGravityEngine()
	r := e.NewRope(Settings{})
	np := &fixedContacts{contacts: []Vec2{NewVec2(0, 0), NewVec2(0, 1)}}
	r.Attach(Host{Line: &testLine{points: []Vec2{NewVec2(0, 0)}}, Contacts: np})
	r.BodyEntered(&testBody{id: "floor", kind: BodyStatic})
	r.Tick(1.0 / 60)
	if len(np.queries) != 0 {
		t.Fatalf("narrow phase queried with colliders disabled")
	}
}
