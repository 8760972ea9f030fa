package rope

const (
	DefaultIterationCount   = 50
	DefaultGravityMagnitude = 980.0
)

// DefaultGravityDirection points down in screen coordinates.
var DefaultGravityDirection = Vec2{X: 0, Y: 1}

// Engine holds the configuration shared by every rope in one simulation and
// the registry that resolves particle references between them. It is not
// safe for concurrent use; the host serialises ticks and mutations.
type Engine struct {
	IterationCount   int
	GravityDirection Vec2
	GravityMagnitude float64

	ropes  map[RopeID]*Rope
	nextID RopeID
}

func NewEngine() *Engine {
	return &Engine{
		IterationCount:   DefaultIterationCount,
		GravityDirection: DefaultGravityDirection,
		GravityMagnitude: DefaultGravityMagnitude,
		ropes:            make(map[RopeID]*Rope),
	}
}

// Gravity returns the acceleration vector magnitude * unit direction.
func (e *Engine) Gravity() Vec2 {
	return e.GravityDirection.Normalize().Times(e.GravityMagnitude)
}

// NewRope creates and registers a rope. Gravity is captured now and not
// re-read afterwards.
func (e *Engine) NewRope(settings Settings) *Rope {
	e.nextID++
	r := &Rope{
		id:        e.nextID,
		engine:    e,
		settings:  settings,
		gravity:   e.Gravity(),
		transform: Identity(),
	}
	e.ropes[r.id] = r
	return r
}

// Rope looks up a registered rope.
func (e *Engine) Rope(id RopeID) (*Rope, bool) {
	r, ok := e.ropes[id]
	return r, ok
}

// Ropes returns the number of registered ropes.
func (e *Engine) Ropes() int {
	return len(e.ropes)
}

func (e *Engine) unregister(id RopeID) {
	delete(e.ropes, id)
}
