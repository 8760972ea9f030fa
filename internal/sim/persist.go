package sim

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/playmatatu/ropesim/internal/models"
	"github.com/playmatatu/ropesim/internal/world"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel session lifecycle events go out on.
const EventsChannel = "sim_events"

func snapshotKey(id string) string {
	return "sim:" + id + ":state"
}

// recordSession inserts the sessions row and returns its id, or 0 without a
// database.
func (m *Manager) recordSession(s *Session) int64 {
	if m.db == nil {
		return 0
	}
	var id int64
	err := m.db.QueryRowx(
		`INSERT INTO sim_sessions (session_key, name, created_by, status, created_at) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		s.ID, s.Name, s.CreatedBy, string(StatusRunning), s.CreatedAt,
	).Scan(&id)
	if err != nil {
		log.Printf("[DB] Failed to record session %s: %v", s.ID, err)
		return 0
	}
	return id
}

func (m *Manager) markSessionEnded(s *Session, tick int64) {
	if m.db == nil || s.dbID == 0 {
		return
	}
	_, err := m.db.Exec(
		`UPDATE sim_sessions SET status=$1, final_tick=$2, ended_at=NOW() WHERE id=$3`,
		string(StatusStopped), tick, s.dbID,
	)
	if err != nil {
		log.Printf("[DB] Failed to close session %s: %v", s.ID, err)
	}
}

// recordRopeSnapshots stores the given rope states as JSONB.
func (m *Manager) recordRopeSnapshots(s *Session, ropes []world.RopeState) {
	if m.db == nil || s.dbID == 0 {
		return
	}
	for _, r := range ropes {
		state, err := json.Marshal(r)
		if err != nil {
			log.Printf("[DB] Failed to marshal rope %d of session %s: %v", r.ID, s.ID, err)
			continue
		}
		_, err = m.db.Exec(
			`INSERT INTO rope_snapshots (session_id, rope_id, state, created_at) VALUES ($1,$2,$3::jsonb,NOW())`,
			s.dbID, int64(r.ID), string(state),
		)
		if err != nil {
			log.Printf("[DB] Failed to record rope %d of session %s: %v", r.ID, s.ID, err)
		}
	}
}

// History returns the most recent session records.
func (m *Manager) History(limit, offset int) ([]models.SimSession, error) {
	if m.db == nil {
		return []models.SimSession{}, nil
	}
	var rows []models.SimSession
	err := m.db.Select(&rows, `
		SELECT id, session_key, name, created_by, status, final_tick, created_at, ended_at
		FROM sim_sessions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

// RopeHistory returns the stored rope snapshots of a past session.
func (m *Manager) RopeHistory(sessionKey string) ([]models.RopeSnapshot, error) {
	if m.db == nil {
		return []models.RopeSnapshot{}, nil
	}
	var rows []models.RopeSnapshot
	err := m.db.Select(&rows, `
		SELECT rs.id, rs.session_id, rs.rope_id, rs.state, rs.created_at
		FROM rope_snapshots rs
		JOIN sim_sessions s ON s.id = rs.session_id
		WHERE s.session_key = $1
		ORDER BY rs.created_at
	`, sessionKey)
	return rows, err
}

func (m *Manager) snapshotTTL() time.Duration {
	if m.config.SnapshotTTLSeconds > 0 {
		return time.Duration(m.config.SnapshotTTLSeconds) * time.Second
	}
	return time.Hour
}

// saveSnapshot caches the latest snapshot of a session in Redis.
func (m *Manager) saveSnapshot(id string, snap world.Snapshot) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.rdb.SetEx(context.Background(), snapshotKey(id), data, m.snapshotTTL()).Err()
}

// LoadSnapshot reads the cached snapshot of a session, which may outlive the
// session itself or belong to another instance.
func (m *Manager) LoadSnapshot(ctx context.Context, id string) (*world.Snapshot, error) {
	if m.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap world.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *Manager) deleteSnapshot(id string) {
	if m.rdb == nil {
		return
	}
	if err := m.rdb.Del(context.Background(), snapshotKey(id)).Err(); err != nil {
		log.Printf("[REDIS] Failed to delete snapshot for %s: %v", id, err)
	}
}

// publishEvent announces a lifecycle event on EventsChannel.
func (m *Manager) publishEvent(id, eventType string, extra map[string]interface{}) {
	if m.rdb == nil {
		return
	}
	payload := map[string]interface{}{"type": eventType, "session_id": id}
	for k, v := range extra {
		payload[k] = v
	}
	b, _ := json.Marshal(payload)
	if n, err := m.rdb.Publish(context.Background(), EventsChannel, b).Result(); err != nil {
		log.Printf("[REDIS] publish %s failed: session=%s err=%v", eventType, id, err)
	} else {
		log.Printf("[REDIS] published %s: session=%s subscribers=%d", eventType, id, n)
	}
}
