package models

import (
	"time"

	"github.com/google/uuid"
)

// Credit ledger entry types.
const (
	CreditEntryPurchase    = "purchase"
	CreditEntryBoostSpend  = "boost_spend"
	CreditEntryAdminAdjust = "admin_adjust"
)

// BoostConfig prices the boost feature. A row with ProID == nil is the
// global default; a row with ProID set overrides it for that professional
// only. Mutated only through admin endpoints.
type BoostConfig struct {
	ProID     *uuid.UUID `json:"pro_id,omitempty"`
	Cost      int        `json:"cost"`
	Enabled   bool       `json:"enabled"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BoostAction records a professional spending credits to surface their
// profile to a specific seeker ahead of normal deck order.
type BoostAction struct {
	ID              uuid.UUID `json:"id"`
	ProID           uuid.UUID `json:"pro_id"`
	TargetSeekerID  uuid.UUID `json:"target_seeker_id"`
	CostAtTimeOfUse int       `json:"cost_at_time_of_use"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreditConfig prices the credit itself. At most one row exists; when
// absent, the service configuration supplies the defaults.
type CreditConfig struct {
	UnitPriceCents int        `json:"unit_price_cents"`
	Label          string     `json:"label,omitempty"`
	UpdatedBy      *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreditLedger is one signed movement on a user's credit balance.
// BalanceAfter is the balance written by the same transaction, so replaying
// the ledger always reconstructs the account.
type CreditLedger struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	EntryType    string     `json:"entry_type"`
	Amount       int        `json:"amount"`
	BalanceAfter int        `json:"balance_after"`
	CheckoutRef  *string    `json:"checkout_ref,omitempty"`
	BoostID      *uuid.UUID `json:"boost_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
