package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Operator is an account allowed to mutate simulations
type Operator struct {
	Username     string         `db:"username" json:"username"`
	DisplayName  string         `db:"display_name" json:"display_name"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the operator carries role.
func (o *Operator) HasRole(role string) bool {
	for _, r := range o.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// OperatorAudit is one entry of the operator audit log
type OperatorAudit struct {
	ID        int             `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// SimSession is the durable record of a simulation session
type SimSession struct {
	ID         int64         `db:"id" json:"id"`
	SessionKey string        `db:"session_key" json:"session_key"`
	Name       string        `db:"name" json:"name"`
	CreatedBy  string        `db:"created_by" json:"created_by"`
	Status     string        `db:"status" json:"status"`
	FinalTick  sql.NullInt64 `db:"final_tick" json:"final_tick,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	EndedAt    sql.NullTime  `db:"ended_at" json:"ended_at,omitempty"`
}

// RopeSnapshot is the last known state of a rope, stored when it is removed
// or its session ends
type RopeSnapshot struct {
	ID        int64           `db:"id" json:"id"`
	SessionID int64           `db:"session_id" json:"session_id"`
	RopeID    int64           `db:"rope_id" json:"rope_id"`
	State     json.RawMessage `db:"state" json:"state"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
