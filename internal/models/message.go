package models

import (
	"time"

	"github.com/google/uuid"
)

// Message types.
const (
	MessageText           = "text"
	MessageQuoteRequest   = "quote_request"
	MessageMeetingRequest = "meeting_request"
)

// Message is an immutable log entry in a match conversation.
type Message struct {
	ID               uuid.UUID  `json:"id"`
	MatchID          uuid.UUID  `json:"match_id"`
	SenderID         uuid.UUID  `json:"sender_id"`
	MsgType          string     `json:"msg_type"`
	Content          string     `json:"content"`
	QuoteAmountCents *int64     `json:"quote_amount_cents,omitempty"`
	MeetingAt        *time.Time `json:"meeting_at,omitempty"`
	IsRead           bool       `json:"is_read"`
	CreatedAt        time.Time  `json:"created_at"`
}
