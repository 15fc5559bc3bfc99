package models

import (
	"time"

	"github.com/google/uuid"
)

// Swipe directions.
const (
	DirectionLike = "like"
	DirectionPass = "pass"
)

// Swipe is an actor's directional decision on a target. One row per ordered
// pair; re-swiping overwrites the direction (last write wins). Rows are
// never deleted.
type Swipe struct {
	ActorID   uuid.UUID `json:"actor_id"`
	TargetID  uuid.UUID `json:"target_id"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match exists between two users once both have liked each other. Immutable
// after creation; only chat_unlocked ever changes, and only false -> true.
// UserA < UserB by UUID ordering so the pair is unique regardless of who
// completed it.
type Match struct {
	ID           uuid.UUID  `json:"id"`
	UserA        uuid.UUID  `json:"user_a"`
	UserB        uuid.UUID  `json:"user_b"`
	ChatUnlocked bool       `json:"chat_unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Other returns the counterpart of userID in the match.
func (m *Match) Other(userID uuid.UUID) uuid.UUID {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}

// HasParticipant reports whether userID is one of the two sides.
func (m *Match) HasParticipant(userID uuid.UUID) bool {
	return m.UserA == userID || m.UserB == userID
}

// OrderPair returns the two IDs in canonical (UserA, UserB) order.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
