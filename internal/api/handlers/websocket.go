package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/operator"
	"github.com/playmatatu/ropesim/internal/ws"
)

// HandleSessionWebSocket streams snapshots of a session. Anyone may watch; an
// operator token, as ?token= or a bearer header, also allows moving anchors.
func HandleSessionWebSocket(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}

		var viewer ws.Viewer
		if token != "" {
			username, roles, err := parseToken(cfg, token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			if hasRole(roles, operator.RoleOperator) {
				log.Printf("[WS] Operator %s connected to session %s", username, c.Param("id"))
				// The gin context is recycled once the upgrade returns
				ip, route := c.ClientIP(), c.FullPath()
				viewer.Operator = username
				viewer.Audit = func(action string, details map[string]interface{}, success bool) {
					operator.LogAction(db, username, ip, route, action, details, success)
				}
			}
		}

		ws.HandleWebSocket(c, viewer)
	}
}
