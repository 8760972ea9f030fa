package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/sim"
)

// AddBody adds a physics body to a session
func AddBody(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req sim.BodyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body request"})
			return
		}

		err = s.AddBody(req)
		audit(c, db, "add_body", map[string]interface{}{"body": req.ID, "kind": req.Kind}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"body": req.ID})
	}
}

// RemoveBody removes a body from a session
func RemoveBody(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		err = s.RemoveBody(c.Param("body"))
		audit(c, db, "remove_body", map[string]interface{}{"body": c.Param("body")}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// SetAnchor creates or moves a named anchor
func SetAnchor(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var pos rope.Vec2
		if err := c.ShouldBindJSON(&pos); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position"})
			return
		}

		err = s.SetAnchor(c.Param("name"), pos)
		audit(c, db, "set_anchor", map[string]interface{}{"anchor": c.Param("name"), "x": pos.X, "y": pos.Y}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"anchor": c.Param("name"), "position": pos})
	}
}

// RemoveAnchor deletes a named anchor; bindings to it go inert
func RemoveAnchor(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		err = s.RemoveAnchor(c.Param("name"))
		audit(c, db, "remove_anchor", map[string]interface{}{"anchor": c.Param("name")}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
