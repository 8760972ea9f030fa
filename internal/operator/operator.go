package operator

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/ropesim/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// RoleOperator may create and mutate sessions.
const RoleOperator = "operator"

var ErrInvalidCredentials = errors.New("invalid username or password")

// GetOperator retrieves an operator account by username
func GetOperator(db *sqlx.DB, username string) (*models.Operator, error) {
	var op models.Operator
	err := db.Get(&op, `SELECT username, display_name, password_hash, roles, created_at, updated_at FROM operators WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// HashPassword hashes a plain password with bcrypt at cost
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks if the provided password matches the stored hash
func VerifyPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// CreateOperator creates or updates an operator account (used for seeding)
func CreateOperator(db *sqlx.DB, username, displayName, password string, roles []string) error {
	hashed, err := HashPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO operators (username, display_name, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			password_hash = EXCLUDED.password_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashed, pq.Array(roles))

	return err
}

// Authenticate validates a username + password combination
func Authenticate(db *sqlx.DB, username, password string) (*models.Operator, error) {
	op, err := GetOperator(db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[AUTH] No operator account for %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyPassword(op.PasswordHash, password) {
		log.Printf("[AUTH] Password verification failed for %s", username)
		return nil, ErrInvalidCredentials
	}
	return op, nil
}

// LogAction records an operator action in the audit log
func LogAction(db *sqlx.DB, username, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("[AUDIT] Failed to marshal audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO operator_audit (username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, username, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("[AUDIT] Failed to log operator action: %v", err)
	}

	return err
}

// GetAuditLogs retrieves recent audit entries with pagination, optionally for
// one operator
func GetAuditLogs(db *sqlx.DB, username string, limit, offset int) ([]models.OperatorAudit, error) {
	var logs []models.OperatorAudit
	err := db.Select(&logs, `
		SELECT id, username, ip, route, action, details, success, created_at
		FROM operator_audit
		WHERE ($1 = '' OR username = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, username, limit, offset)
	return logs, err
}
