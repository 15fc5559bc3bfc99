package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkout purposes.
const (
	CheckoutChatUnlock     = "chat_unlock"
	CheckoutCreditPurchase = "credit_purchase"
)

// Checkout statuses. pending -> paid happens exactly once per reference;
// pending -> expired is applied by the expiry job after the TTL.
const (
	CheckoutPending = "pending"
	CheckoutPaid    = "paid"
	CheckoutExpired = "expired"
)

// CheckoutSession tracks one external payment flow. Reference is the
// provider's session reference and the idempotency key for confirmations.
type CheckoutSession struct {
	Reference   string     `json:"reference"`
	UserID      uuid.UUID  `json:"user_id"`
	Purpose     string     `json:"purpose"`
	MatchID     *uuid.UUID `json:"match_id,omitempty"`
	Credits     *int       `json:"credits,omitempty"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	CheckoutURL string     `json:"checkout_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}
