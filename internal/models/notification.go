package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotifyBoost       = "boost"
	NotifyMatch       = "match"
	NotifyChatUnlock  = "chat_unlock"
	NotifyCreditGrant = "credit_grant"
)

type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	NType     string          `json:"ntype"`
	Title     string          `json:"title"`
	Body      string          `json:"body,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}
