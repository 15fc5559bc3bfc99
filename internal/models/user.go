package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles.
const (
	RoleSeeker       = "seeker"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// Verification statuses for professionals. A professional that is not
// "active" is in ghost mode: it can swipe and browse but is never surfaced
// to seekers.
const (
	VerificationPending  = "pending"
	VerificationActive   = "active"
	VerificationRejected = "rejected"
)

type User struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	DisplayName        string    `json:"display_name"`
	Role               string    `json:"role"`
	Trade              string    `json:"trade,omitempty"`
	VerificationStatus string    `json:"verification_status,omitempty"`
	Credits            int       `json:"credits"`
	Featured           bool      `json:"featured"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsGhost reports whether the user is a professional not yet visible to
// seekers.
func (u *User) IsGhost() bool {
	return u.Role == RoleProfessional && u.VerificationStatus != VerificationActive
}
