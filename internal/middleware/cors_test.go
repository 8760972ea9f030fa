package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/ropesim/internal/config"
)

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		env    string
		origin string
		want   int
	}{
		{"dev localhost", "development", "http://localhost:3000", http.StatusOK},
		{"dev foreign", "development", "https://evil.example", http.StatusForbidden},
		{"dev frontend", "development", "https://viewer.example", http.StatusOK},
		{"missing origin", "development", "", http.StatusBadRequest},
		{"prod frontend", "production", "https://viewer.example", http.StatusOK},
		{"prod default", "production", "https://ropesim.playmatatu.com", http.StatusOK},
		{"prod localhost", "production", "http://localhost:5173", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Environment: tt.env, FrontendURL: "https://viewer.example"}
			r := gin.New()
			r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		frontend string
		want     []string
	}{
		{"dev default", "development", "http://localhost:5173", []string{"http://localhost:5173", "http://127.0.0.1:5173"}},
		{"dev custom", "development", "http://localhost:3000/", []string{"http://localhost:3000", "http://127.0.0.1:3000"}},
		{"dev remote", "development", "https://viewer.example", []string{"https://viewer.example"}},
		{"prod", "production", "https://viewer.example", []string{"https://ropesim.playmatatu.com", "https://viewer.example"}},
		{"prod unset", "production", "", []string{"https://ropesim.playmatatu.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowedOrigins(&config.Config{Environment: tt.env, FrontendURL: tt.frontend})
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("origins = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocketCORSCheckIgnoresPlainRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", WebSocketCORSCheck(&config.Config{Environment: "production"}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}
