package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ropesim/internal/config"
)

const productionOrigin = "https://ropesim.playmatatu.com"

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := allowedOrigins(cfg)
	log.Printf("[CORS] Environment: %s, allowed origins: %v", cfg.Environment, origins)

	corsConfig := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if isDevelopment(cfg) {
		// Viewers served from any local port
		corsConfig.AllowOriginFunc = isLocalOrigin
	}

	return cors.New(corsConfig)
}

func isDevelopment(cfg *config.Config) bool {
	return cfg.Environment == "development"
}

// allowedOrigins lists the exact origins accepted. FRONTEND_URL is always one
// of them; outside development the public viewer origin is added.
func allowedOrigins(cfg *config.Config) []string {
	var origins []string
	add := func(origin string) {
		origin = strings.TrimRight(origin, "/")
		if origin == "" {
			return
		}
		for _, o := range origins {
			if o == origin {
				return
			}
		}
		origins = append(origins, origin)
	}

	if isDevelopment(cfg) {
		add(cfg.FrontendURL)
		add(strings.Replace(cfg.FrontendURL, "://localhost:", "://127.0.0.1:", 1))
	} else {
		add(productionOrigin)
		add(cfg.FrontendURL)
	}
	return origins
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:")
}

// WebSocketCORSCheck validates the origin of websocket upgrades against the
// same origins as CORSMiddleware.
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.ToLower(c.GetHeader("Connection")) != "upgrade" ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "WebSocket origin required"})
			return
		}

		allowed := isDevelopment(cfg) && isLocalOrigin(origin)
		for _, o := range allowedOrigins(cfg) {
			if origin == o {
				allowed = true
				break
			}
		}
		if !allowed {
			log.Printf("[CORS] Rejected websocket origin %s", origin)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}
