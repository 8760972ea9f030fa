package sim

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/world"
	"github.com/redis/go-redis/v9"
)

// SnapshotListener receives snapshots of a session after a broadcast tick.
type SnapshotListener func(sessionID string, snap world.Snapshot)

// Manager owns every live session and their persistence.
type Manager struct {
	sessions  map[string]*Session
	listeners []SnapshotListener
	rdb       *redis.Client  // Redis client for snapshots and events
	db        *sqlx.DB       // SQL DB for session history
	config    *config.Config // Application config
	mu        sync.RWMutex
}

// NewManager creates a session manager. db and rdb may be nil, in which case
// the matching persistence is skipped.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Manager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateSessionID() string {
	return "sim_" + generateToken(8)
}

// OnSnapshot registers a listener for broadcast snapshots.
func (m *Manager) OnSnapshot(fn SnapshotListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// TickDuration returns the fixed step in seconds.
func (m *Manager) TickDuration() float64 {
	rate := m.config.TickRate
	if rate <= 0 {
		rate = 60
	}
	return 1 / float64(rate)
}

func (m *Manager) newEngine() *rope.Engine {
	e := rope.NewEngine()
	if m.config.RopeIterationCount > 0 {
		e.IterationCount = m.config.RopeIterationCount
	}
	if m.config.GravityX != 0 || m.config.GravityY != 0 {
		e.GravityDirection = rope.NewVec2(m.config.GravityX, m.config.GravityY)
	}
	if m.config.Gravity != 0 {
		e.GravityMagnitude = m.config.Gravity
	}
	return e
}

// Create starts a new running session.
func (m *Manager) Create(name, createdBy string) (*Session, error) {
	m.mu.Lock()
	if limit := m.config.MaxSessions; limit > 0 && len(m.sessions) >= limit {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := newSession(generateSessionID(), name, createdBy, m.newEngine(), m.config.MaxRopePoints)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.dbID = m.recordSession(s)
	m.publishEvent(s.ID, "session_created", nil)
	log.Printf("[SIM] Session created: %s (name=%q by=%s)", s.ID, name, createdBy)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns every live session, oldest first.
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Remove stops a session, stores the final rope states and drops it.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.stop()
	snap := s.Snapshot()
	m.recordRopeSnapshots(s, snap.Ropes)
	m.markSessionEnded(s, snap.Tick)
	m.deleteSnapshot(s.ID)
	m.publishEvent(s.ID, "session_closed", map[string]interface{}{"tick": snap.Tick})
	log.Printf("[SIM] Session removed: %s after %d ticks", s.ID, snap.Tick)
	return nil
}

// SetStatus pauses or resumes a session and announces the change.
func (m *Manager) SetStatus(id string, status Status) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	switch status {
	case StatusPaused:
		err = s.Pause()
	case StatusRunning:
		err = s.Resume()
	default:
		return ErrInvalidRequest
	}
	if err != nil {
		return err
	}
	m.publishEvent(id, "session_"+string(status), nil)
	return nil
}

// Step advances a paused session manually and broadcasts the result.
func (m *Manager) Step(id string, ticks int) (world.Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return world.Snapshot{}, err
	}
	snap, err := s.Step(ticks, m.TickDuration())
	if err != nil {
		return world.Snapshot{}, err
	}
	m.broadcast(s.ID, snap)
	return snap, nil
}

// RemoveRope detaches a rope and keeps its final state.
func (m *Manager) RemoveRope(id string, ropeID rope.RopeID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	state, err := s.RemoveRope(ropeID)
	if err != nil {
		return err
	}
	m.recordRopeSnapshots(s, []world.RopeState{state})
	return nil
}

// tickAll steps every running session once.
func (m *Manager) tickAll(dt float64) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	every := int64(m.config.BroadcastEveryTicks)
	if every <= 0 {
		every = 1
	}
	for _, s := range sessions {
		snap, stepped := s.advance(dt)
		if !stepped || snap.Tick%every != 0 {
			continue
		}
		m.broadcast(s.ID, snap)
	}
}

// broadcast caches the snapshot and hands it to local listeners.
func (m *Manager) broadcast(id string, snap world.Snapshot) {
	if err := m.saveSnapshot(id, snap); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for %s: %v", id, err)
	}
	m.mu.RLock()
	listeners := append([]SnapshotListener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(id, snap)
	}
}
