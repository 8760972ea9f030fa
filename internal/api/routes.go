package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/api/handlers"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/middleware"
	"github.com/playmatatu/ropesim/internal/operator"
	"github.com/playmatatu/ropesim/internal/sim"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, m *sim.Manager, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.POST("/auth/login", handlers.Login(db, cfg))

		// Viewer endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions(m))
			sessions.GET("/:id", handlers.GetSession(m))
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(db, cfg))
		}

		// Operator endpoints
		ops := v1.Group("")
		ops.Use(handlers.AuthMiddleware(cfg), handlers.RequireRole(operator.RoleOperator))
		{
			ops.GET("/history/sessions", handlers.SessionHistory(m))
			ops.GET("/history/sessions/:id/ropes", handlers.SessionRopeHistory(m))
			ops.GET("/audit", handlers.GetAuditLogs(db))

			ops.POST("/sessions", handlers.CreateSession(m, db))
			ops.DELETE("/sessions/:id", handlers.DeleteSession(m, db))
			ops.POST("/sessions/:id/pause", handlers.SetSessionStatus(m, db, sim.StatusPaused))
			ops.POST("/sessions/:id/resume", handlers.SetSessionStatus(m, db, sim.StatusRunning))
			ops.POST("/sessions/:id/step", handlers.StepSession(m, db))

			ops.POST("/sessions/:id/ropes", handlers.AddRope(m, db))
			ops.DELETE("/sessions/:id/ropes/:rope", handlers.RemoveRope(m, db))
			ops.POST("/sessions/:id/bindings/rope", handlers.BindRopes(m, db))
			ops.POST("/sessions/:id/bindings/node", handlers.BindNode(m, db))

			ops.POST("/sessions/:id/bodies", handlers.AddBody(m, db))
			ops.DELETE("/sessions/:id/bodies/:body", handlers.RemoveBody(m, db))

			ops.PUT("/sessions/:id/anchors/:name", handlers.SetAnchor(m, db))
			ops.DELETE("/sessions/:id/anchors/:name", handlers.RemoveAnchor(m, db))
		}
	}
}
