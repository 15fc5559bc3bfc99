package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/models"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("not a match participant")
	ErrChatLocked     = errors.New("chat is locked until the seeker pays the unlock fee")
	ErrInvalidMessage = errors.New("invalid message")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context, userID uuid.UUID) ([]*models.Match, error)
	InsertMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, matchID uuid.UUID, limit int) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, matchID, readerID uuid.UUID) error
}

// SendInput carries one outgoing message.
type SendInput struct {
	MsgType          string
	Content          string
	QuoteAmountCents *int64
	MeetingAt        *time.Time
}

type Service interface {
	ListMatches(ctx context.Context, userID uuid.UUID) ([]*models.Match, error)
	ListMessages(ctx context.Context, user *models.User, matchID uuid.UUID, limit int) ([]*models.Message, error)
	SendMessage(ctx context.Context, sender *models.User, matchID uuid.UUID, in SendInput) (*models.Message, error)
}

type service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, log: log}
}

var _ Service = (*service)(nil)

func (s *service) ListMatches(ctx context.Context, userID uuid.UUID) ([]*models.Match, error) {
	return s.store.ListMatches(ctx, userID)
}

// ListMessages returns the conversation and marks the counterpart's
// messages read. Reading is free on both sides; only sending is gated.
func (s *service) ListMessages(ctx context.Context, user *models.User, matchID uuid.UUID, limit int) ([]*models.Message, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if !m.HasParticipant(user.ID) {
		return nil, ErrNotParticipant
	}
	msgs, err := s.store.ListMessages(ctx, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if err := s.store.MarkMessagesRead(ctx, matchID, user.ID); err != nil {
		s.log.Warn("mark messages read failed", "match_id", matchID, "error", err)
	}
	return msgs, nil
}

// SendMessage appends to a conversation. The professional side may always
// write; the seeker side only once the chat is unlocked. Quote and meeting
// requests must carry their payload.
func (s *service) SendMessage(ctx context.Context, sender *models.User, matchID uuid.UUID, in SendInput) (*models.Message, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if !m.HasParticipant(sender.ID) {
		return nil, ErrNotParticipant
	}
	if !m.ChatUnlocked && sender.Role != models.RoleProfessional {
		return nil, ErrChatLocked
	}

	msg := &models.Message{
		MatchID:          matchID,
		SenderID:         sender.ID,
		MsgType:          in.MsgType,
		Content:          in.Content,
		QuoteAmountCents: in.QuoteAmountCents,
		MeetingAt:        in.MeetingAt,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func validateInput(in SendInput) error {
	switch in.MsgType {
	case models.MessageText:
		if in.Content == "" {
			return fmt.Errorf("%w: empty content", ErrInvalidMessage)
		}
	case models.MessageQuoteRequest:
		if in.QuoteAmountCents == nil || *in.QuoteAmountCents <= 0 {
			return fmt.Errorf("%w: quote_request needs a positive quote_amount_cents", ErrInvalidMessage)
		}
	case models.MessageMeetingRequest:
		if in.MeetingAt == nil {
			return fmt.Errorf("%w: meeting_request needs meeting_at", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown msg_type %q", ErrInvalidMessage, in.MsgType)
	}
	return nil
}
