package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEntry attributes one mutating admin action: who did what to which
// entity, when. Written in the same transaction as the mutation wherever
// the mutation is transactional.
type AuditEntry struct {
	ID         uuid.UUID       `json:"id"`
	AdminID    uuid.UUID       `json:"admin_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
