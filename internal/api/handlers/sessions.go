package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/sim"
)

// ListSessions returns every live session
func ListSessions(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": m.List()})
	}
}

// GetSession returns a session and its latest snapshot. Sessions that are not
// live here fall back to the cached snapshot in Redis.
func GetSession(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := m.Get(id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"session": s.Info(), "snapshot": s.Snapshot()})
			return
		}

		snap, err := m.LoadSnapshot(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, sim.ErrSessionNotFound) {
				log.Printf("[REDIS] Failed to load snapshot for %s: %v", id, err)
			}
			respondError(c, sim.ErrSessionNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": gin.H{"id": id, "status": sim.StatusStopped}, "snapshot": snap, "cached": true})
	}
}

// CreateSession starts a new session owned by the calling operator
func CreateSession(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		s, err := m.Create(strings.TrimSpace(req.Name), c.GetString(ctxOperator))
		audit(c, db, "create_session", map[string]interface{}{"name": req.Name}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{"session": s.Info()})
	}
}

// DeleteSession stops a session and stores its final state
func DeleteSession(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := m.Remove(c.Param("id"))
		audit(c, db, "delete_session", nil, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// SetSessionStatus pauses or resumes a session
func SetSessionStatus(m *sim.Manager, db *sqlx.DB, status sim.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := m.SetStatus(c.Param("id"), status)
		audit(c, db, "set_status", map[string]interface{}{"status": status}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

// StepSession advances a paused session by a number of ticks
func StepSession(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Ticks int `json:"ticks"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.Ticks > 600 {
			req.Ticks = 600
		}

		snap, err := m.Step(c.Param("id"), req.Ticks)
		audit(c, db, "step", map[string]interface{}{"ticks": req.Ticks}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"snapshot": snap})
	}
}

// SessionHistory returns stored session records
func SessionHistory(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := paging(c)
		rows, err := m.History(limit, offset)
		if err != nil {
			log.Printf("[DB] Failed to fetch session history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": rows, "limit": limit, "offset": offset})
	}
}

// SessionRopeHistory returns the stored rope snapshots of a session
func SessionRopeHistory(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := m.RopeHistory(c.Param("id"))
		if err != nil {
			log.Printf("[DB] Failed to fetch rope history for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ropes": rows})
	}
}
