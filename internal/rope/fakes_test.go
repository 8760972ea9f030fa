package rope

// Test doubles for the host collaborators.

type testLine struct {
	points   []Vec2
	width    float64
	rendered [][]Vec2
}

func (l *testLine) Points() []Vec2 {
	return l.points
}

func (l *testLine) Width() float64 {
	return l.width
}

func (l *testLine) SetPoints(points []Vec2) {
	l.rendered = append(l.rendered, points)
}

type testArea struct {
	shapes []Shape
	xforms map[int]Transform
}

func (a *testArea) AddShape(s Shape) {
	a.shapes = append(a.shapes, s)
}

func (a *testArea) SetShapeTransform(i int, xf Transform) {
	if a.xforms == nil {
		a.xforms = make(map[int]Transform)
	}
	a.xforms[i] = xf
}

func (a *testArea) ClearShapes() {
	a.shapes = nil
	a.xforms = nil
}

// fixedContacts returns the same contact list for every query and records
// the proxy transforms it was asked about.
type fixedContacts struct {
	contacts []Vec2
	queries  []Transform
}

func (f *fixedContacts) CollideAndGetContacts(a Shape, xa Transform, b Shape, xb Transform) []Vec2 {
	f.queries = append(f.queries, xb)
	return f.contacts
}

type testBody struct {
	id       BodyID
	kind     BodyKind
	mass     float64
	impulses []Vec2
	dead     bool
}

func (b *testBody) ID() BodyID {
	return b.id
}

func (b *testBody) Kind() BodyKind {
	return b.kind
}

func (b *testBody) Transform() Transform {
	return Identity()
}

func (b *testBody) Shapes() []Shape {
	return []Shape{"shape"}
}

func (b *testBody) Mass() float64 {
	return b.mass
}

func (b *testBody) ApplyImpulse(v Vec2) {
	b.impulses = append(b.impulses, v)
}

func (b *testBody) Valid() bool {
	return !b.dead
}

type fixedSource struct {
	pos Vec2
}

func (s *fixedSource) Position() Vec2 {
	return s.pos
}

func horizontalLine(n int, spacing float64) *testLine {
	pts := make([]Vec2, n)
	for i := range pts {
		pts[i] = NewVec2(float64(i)*spacing, 0)
	}
	return &testLine{points: pts, width: 4}
}
