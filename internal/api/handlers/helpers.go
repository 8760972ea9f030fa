package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/operator"
	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/sim"
	"github.com/playmatatu/ropesim/internal/world"
)

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sim.ErrSessionNotFound),
		errors.Is(err, sim.ErrRopeNotFound),
		errors.Is(err, sim.ErrBodyNotFound),
		errors.Is(err, world.ErrAnchorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sim.ErrInvalidRequest),
		errors.Is(err, world.ErrInvalidShape),
		errors.Is(err, world.ErrEmptyRope),
		errors.Is(err, rope.ErrParticleNotFound),
		errors.Is(err, rope.ErrForeignRope):
		status = http.StatusBadRequest
	case errors.Is(err, world.ErrDuplicateBody),
		errors.Is(err, sim.ErrSessionStopped),
		errors.Is(err, sim.ErrNotPaused),
		errors.Is(err, rope.ErrNotAttached):
		status = http.StatusConflict
	case errors.Is(err, sim.ErrTooManySessions):
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// audit records a mutating operator request
func audit(c *gin.Context, db *sqlx.DB, action string, details map[string]interface{}, success bool) {
	if db == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	if id := c.Param("id"); id != "" {
		details["session_id"] = id
	}
	operator.LogAction(db, c.GetString(ctxOperator), c.ClientIP(), c.FullPath(), action, details, success)
}

func parseRopeID(c *gin.Context) (rope.RopeID, bool) {
	id, err := strconv.ParseUint(c.Param("rope"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rope id"})
		return 0, false
	}
	return rope.RopeID(id), true
}

func paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 25
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
