package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/operator"
)

// GetAuditLogs returns paginated operator audit entries
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"logs": []interface{}{}, "limit": 0, "offset": 0})
			return
		}
		limit, offset := paging(c)
		logs, err := operator.GetAuditLogs(db, c.DefaultQuery("username", ""), limit, offset)
		if err != nil {
			log.Printf("[AUDIT] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
