package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/operator"
)

const (
	ctxOperator = "operator"
	ctxRoles    = "roles"
)

var errInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 operator token.
func IssueToken(cfg *config.Config, username string, roles []string) (string, time.Time, error) {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"sub": username, "roles": roles, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	return signed, exp, err
}

// Login validates operator credentials and issues a JWT
func Login(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator accounts unavailable"})
			return
		}

		username := strings.TrimSpace(req.Username)
		op, err := operator.Authenticate(db, username, req.Password)
		if err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "login", map[string]interface{}{"username": username}, false)
			if errors.Is(err, operator.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			log.Printf("[AUTH] Login failed for %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		signed, exp, err := IssueToken(cfg, op.Username, op.Roles)
		if err != nil {
			log.Printf("[AUTH] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		operator.LogAction(db, op.Username, c.ClientIP(), c.FullPath(), "login", nil, true)
		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": exp.Format(time.RFC3339),
			"operator":   gin.H{"username": op.Username, "display_name": op.DisplayName, "roles": op.Roles},
		})
	}
}

// parseToken validates an HS256 operator token and returns its subject and
// roles.
func parseToken(cfg *config.Config, token string) (string, []string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return "", nil, err
	}
	if !parsed.Valid {
		return "", nil, errInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, errInvalidToken
	}
	username, _ := claims["sub"].(string)
	if username == "" {
		return "", nil, errInvalidToken
	}

	var roles []string
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return username, roles, nil
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthMiddleware validates the bearer JWT and stores the operator and roles
// in the context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		username, roles, err := parseToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxOperator, username)
		c.Set(ctxRoles, roles)
		c.Next()
	}
}

// RequireRole rejects operators whose token lacks role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get(ctxRoles)
		list, _ := roles.([]string)
		if hasRole(list, role) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
