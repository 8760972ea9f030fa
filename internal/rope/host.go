package rope

// Collaborator interfaces implemented by the host engine. The core never
// constructs these; it only consumes them.

// Polyline is the rendering collaborator a rope is built from and drawn into.
type Polyline interface {
	Points() []Vec2
	Width() float64
	SetPoints(points []Vec2)
}

// Shape is an opaque collision shape understood by the host's NarrowPhase.
type Shape interface{}

// CircleShape is the collision proxy attached to each particle.
type CircleShape struct {
	Radius float64 `json:"radius"`
}

// CollisionArea receives the rope's proxies. Shape indices follow the order
// of AddShape calls, which matches particle order.
type CollisionArea interface {
	AddShape(shape Shape)
	SetShapeTransform(index int, xform Transform)
	ClearShapes()
}

// NarrowPhase returns contact point pairs between two shapes as a flat slice
// [a0, b0, a1, b1, ...], where each a lies on shape a and each b on shape b.
type NarrowPhase interface {
	CollideAndGetContacts(a Shape, xformA Transform, b Shape, xformB Transform) []Vec2
}

// BodyID identifies an external body across overlap notifications.
type BodyID string

type BodyKind int

const (
	BodyStatic BodyKind = iota
	BodyRigid
	BodyKinematic
)

func (k BodyKind) String() string {
	switch k {
	case BodyStatic:
		return "static"
	case BodyRigid:
		return "rigid"
	case BodyKinematic:
		return "kinematic"
	}
	return "unknown"
}

// Body is an external physics body a rope can touch.
type Body interface {
	ID() BodyID
	Kind() BodyKind
	Transform() Transform
	Shapes() []Shape
}

// ImpulseReceiver is implemented by rigid bodies.
type ImpulseReceiver interface {
	Mass() float64
	ApplyImpulse(impulse Vec2)
}

// PositionSource is anything a particle can be pinned to.
type PositionSource interface {
	Position() Vec2
}

// validator is optionally implemented by collaborators that can expire.
type validator interface {
	Valid() bool
}

func expired(v interface{}) bool {
	if v == nil {
		return true
	}
	if val, ok := v.(validator); ok {
		return !val.Valid()
	}
	return false
}

// Host bundles the per-rope collaborators passed to Attach. Area and Contacts
// are only required when colliders are enabled.
type Host struct {
	Line     Polyline
	Area     CollisionArea
	Contacts NarrowPhase
}
