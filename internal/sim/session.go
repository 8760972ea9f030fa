package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/world"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
	ErrSessionStopped  = errors.New("session stopped")
	ErrNotPaused       = errors.New("session must be paused to step manually")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRopeNotFound    = world.ErrRopeNotFound
	ErrBodyNotFound    = world.ErrBodyNotFound
)

// Session is one simulated world. All access to the world goes through the
// session mutex, so ticks and structural changes never interleave.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	dbID         int64
	maxPoints    int
	mu           sync.Mutex
	world        *world.World
	status       Status
	lastActivity time.Time
}

// SessionInfo is the list view of a session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	Tick         int64     `json:"tick"`
	Ropes        int       `json:"ropes"`
	Bodies       int       `json:"bodies"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func newSession(id, name, createdBy string, engine *rope.Engine, maxPoints int) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Name:         name,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		maxPoints:    maxPoints,
		world:        world.New(engine),
		status:       StatusRunning,
		lastActivity: now,
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.world.Snapshot()
	return SessionInfo{
		ID:           s.ID,
		Name:         s.Name,
		Status:       s.status,
		Tick:         snap.Tick,
		Ropes:        len(snap.Ropes),
		Bodies:       len(snap.Bodies),
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.lastActivity,
	}
}

func (s *Session) Snapshot() world.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Snapshot()
}

func (s *Session) Pause() error {
	return s.setStatus(StatusPaused)
}

func (s *Session) Resume() error {
	return s.setStatus(StatusRunning)
}

func (s *Session) setStatus(status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusStopped {
		return ErrSessionStopped
	}
	s.status = status
	s.lastActivity = time.Now()
	return nil
}

func (s *Session) stop() {
	s.mu.Lock()
	s.status = StatusStopped
	s.mu.Unlock()
}

// advance steps the world once if the session is running. It reports whether
// a step happened.
func (s *Session) advance(dt float64) (world.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRunning {
		return world.Snapshot{}, false
	}
	s.world.Step(dt)
	return s.world.Snapshot(), true
}

// Step advances a paused session by ticks steps of dt.
func (s *Session) Step(ticks int, dt float64) (world.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case StatusStopped:
		return world.Snapshot{}, ErrSessionStopped
	case StatusRunning:
		return world.Snapshot{}, ErrNotPaused
	}
	if ticks < 1 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		s.world.Step(dt)
	}
	s.lastActivity = time.Now()
	return s.world.Snapshot(), nil
}

// AddRope builds a rope from req. An initial velocity is imposed on every
// particle using dt as the reference step.
func (s *Session) AddRope(req RopeRequest, dt float64) (rope.RopeID, error) {
	if err := req.validate(s.maxPoints); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusStopped {
		return 0, ErrSessionStopped
	}
	r, err := s.world.AddRope(req.options())
	if err != nil {
		return 0, err
	}
	if req.InitialVelocity != nil && dt > 0 {
		for i := 0; i < r.Len(); i++ {
			r.SetParticleVelocity(i, *req.InitialVelocity, dt)
		}
	}
	s.lastActivity = time.Now()
	return r.ID(), nil
}

// RemoveRope detaches a rope and returns its last state.
func (s *Session) RemoveRope(id rope.RopeID) (world.RopeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := ropeState(s.world.Snapshot(), id)
	if !ok {
		return world.RopeState{}, ErrRopeNotFound
	}
	if err := s.world.RemoveRope(id); err != nil {
		return world.RopeState{}, err
	}
	s.lastActivity = time.Now()
	return state, nil
}

func (s *Session) AddBody(req BodyRequest) error {
	b, err := req.body()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusStopped {
		return ErrSessionStopped
	}
	if err := s.world.AddBody(b); err != nil {
		return fmt.Errorf("add body %s: %w", req.ID, err)
	}
	s.lastActivity = time.Now()
	return nil
}

func (s *Session) RemoveBody(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.RemoveBody(rope.BodyID(id))
}

func (s *Session) BindRopes(req RopeBindRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.BindRopes(req.Rope, req.Index, req.OtherRope, req.OtherIndex)
}

func (s *Session) BindNode(req NodeBindRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case req.Source != nil:
		return s.world.BindParticle(req.Rope, req.Index, *req.Source)
	case req.Anchor != "":
		return s.world.BindAnchor(req.Rope, req.Index, req.Anchor)
	}
	return fmt.Errorf("%w: anchor or source required", ErrInvalidRequest)
}

// SetAnchor creates or moves a named anchor.
func (s *Session) SetAnchor(name string, pos rope.Vec2) error {
	if name == "" || !pos.IsFinite() {
		return fmt.Errorf("%w: anchor needs a name and a finite position", ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.SetAnchor(name, pos)
	s.lastActivity = time.Now()
	return nil
}

// MoveAnchor moves an anchor that already exists.
func (s *Session) MoveAnchor(name string, pos rope.Vec2) error {
	if !pos.IsFinite() {
		return fmt.Errorf("%w: anchor position must be finite", ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.world.MoveAnchor(name, pos); err != nil {
		return err
	}
	s.lastActivity = time.Now()
	return nil
}

func (s *Session) RemoveAnchor(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.RemoveAnchor(name)
}

func ropeState(snap world.Snapshot, id rope.RopeID) (world.RopeState, bool) {
	for _, r := range snap.Ropes {
		if r.ID == id {
			return r, true
		}
	}
	return world.RopeState{}, false
}
