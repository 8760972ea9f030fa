package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/sim"
)

// AddRope adds a rope to a session
func AddRope(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req sim.RopeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rope request"})
			return
		}

		id, err := s.AddRope(req, m.TickDuration())
		audit(c, db, "add_rope", map[string]interface{}{"points": len(req.Points), "colliders": req.UseColliders}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"rope": id})
	}
}

// RemoveRope detaches a rope from a session
func RemoveRope(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ropeID, ok := parseRopeID(c)
		if !ok {
			return
		}
		err := m.RemoveRope(c.Param("id"), ropeID)
		audit(c, db, "remove_rope", map[string]interface{}{"rope": ropeID}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// BindRopes joins particles of two ropes
func BindRopes(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req sim.RopeBindRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid binding"})
			return
		}

		err = s.BindRopes(req)
		audit(c, db, "bind_rope", map[string]interface{}{"rope": req.Rope, "other_rope": req.OtherRope}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"bound": true})
	}
}

// BindNode pins a particle to an anchor or another rope's particle
func BindNode(m *sim.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req sim.NodeBindRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid binding"})
			return
		}

		err = s.BindNode(req)
		audit(c, db, "bind_node", map[string]interface{}{"rope": req.Rope, "anchor": req.Anchor}, err == nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"bound": true})
	}
}
