package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipetonpro/backend/internal/config"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
)

// swappable in tests
var timeNow = time.Now

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrNotParticipant      = errors.New("not a match participant")
	ErrAlreadyUnlocked     = errors.New("chat already unlocked")
	ErrNotASeeker          = errors.New("only the seeker side pays for unlock")
	ErrNotAPro             = errors.New("only professionals buy credits")
	ErrInvalidCredits      = errors.New("credits must be at least 1")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertSession(ctx context.Context, s *models.CheckoutSession) error
	GetSession(ctx context.Context, reference string) (*models.CheckoutSession, error)
	GetPendingUnlockSession(ctx context.Context, matchID uuid.UUID) (*models.CheckoutSession, error)
	GetCreditConfig(ctx context.Context) (*models.CreditConfig, error)
	ConfirmPaid(ctx context.Context, tx pgx.Tx, reference string) (*models.CheckoutSession, error)
	ExpireSessions(ctx context.Context) (int64, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UnlockChat(ctx context.Context, tx pgx.Tx, matchID uuid.UUID) (bool, error)
}

type Service interface {
	InitiateUnlock(ctx context.Context, user *models.User, matchID uuid.UUID) (*models.CheckoutSession, error)
	PurchaseCredits(ctx context.Context, user *models.User, credits int) (*models.CheckoutSession, error)
	ConfirmWebhook(ctx context.Context, reference, providerStatus string) error
	ExpireSessions(ctx context.Context) (int64, error)
}

type service struct {
	store    Store
	provider Provider
	credits  ledger.Service
	insertFn notification.InsertTxFunc
	pricing  config.PricingConfig
	payment  config.PaymentConfig
	log      *slog.Logger
}

func NewService(store Store, provider Provider, credits ledger.Service, insertFn notification.InsertTxFunc, pricing config.PricingConfig, payment config.PaymentConfig, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{
		store:    store,
		provider: provider,
		credits:  credits,
		insertFn: insertFn,
		pricing:  pricing,
		payment:  payment,
		log:      log,
	}
}

var _ Service = (*service)(nil)

// InitiateUnlock starts the paid chat-unlock flow for a match. Only the
// seeker side pays; the professional's side is open as soon as the match
// exists. Nothing changes on the match until the provider confirms.
func (s *service) InitiateUnlock(ctx context.Context, user *models.User, matchID uuid.UUID) (*models.CheckoutSession, error) {
	if user.Role != models.RoleSeeker {
		return nil, ErrNotASeeker
	}
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
	if m.ChatUnlocked {
		return nil, ErrAlreadyUnlocked
	}

	// one live session per match: a retry before the previous checkout
	// expires gets that checkout back instead of a second bill
	existing, err := s.store.GetPendingUnlockSession(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("load pending session: %w", err)
	}
	if existing != nil {
		s.log.Info("reusing pending checkout session",
			"reference", existing.Reference, "match_id", m.ID)
		return existing, nil
	}

	session := &models.CheckoutSession{
		Reference:   uuid.NewString(),
		UserID:      user.ID,
		Purpose:     models.CheckoutChatUnlock,
		MatchID:     &m.ID,
		AmountCents: s.pricing.UnlockPriceCents,
		Currency:    s.pricing.Currency,
		Status:      models.CheckoutPending,
	}
	return s.createSession(ctx, session, "Unlock conversation")
}

// PurchaseCredits starts a checkout for a pack of boost credits.
func (s *service) PurchaseCredits(ctx context.Context, user *models.User, credits int) (*models.CheckoutSession, error) {
	if user.Role != models.RoleProfessional {
		return nil, ErrNotAPro
	}
	if credits < 1 {
		return nil, ErrInvalidCredits
	}

	// admin-tuned unit price wins over the configured default
	unit := s.pricing.CreditUnitPriceCents
	if cc, err := s.store.GetCreditConfig(ctx); err != nil {
		return nil, fmt.Errorf("load credit pricing: %w", err)
	} else if cc != nil {
		unit = int64(cc.UnitPriceCents)
	}

	session := &models.CheckoutSession{
		Reference:   uuid.NewString(),
		UserID:      user.ID,
		Purpose:     models.CheckoutCreditPurchase,
		Credits:     &credits,
		AmountCents: int64(credits) * unit,
		Currency:    s.pricing.Currency,
		Status:      models.CheckoutPending,
	}
	return s.createSession(ctx, session, fmt.Sprintf("%d boost credits", credits))
}

func (s *service) createSession(ctx context.Context, session *models.CheckoutSession, description string) (*models.CheckoutSession, error) {
	url, err := s.provider.CreateCheckout(ctx, CheckoutIntent{
		Reference:   session.Reference,
		AmountCents: session.AmountCents,
		Currency:    session.Currency,
		Description: description,
		SuccessURL:  s.payment.SuccessURL,
		CancelURL:   s.payment.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	session.CheckoutURL = url
	session.ExpiresAt = timeNow().Add(s.payment.CheckoutTTL)
	if err := s.store.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.log.Info("checkout session created",
		"reference", session.Reference, "purpose", session.Purpose,
		"user_id", session.UserID, "amount_cents", session.AmountCents)
	return session, nil
}

// ConfirmWebhook processes a provider callback. The conditional update in
// ConfirmPaid guarantees effects apply exactly once per reference no matter
// how many times the provider retries; a duplicate for an already paid
// session is a silent success.
func (s *service) ConfirmWebhook(ctx context.Context, reference, providerStatus string) error {
	if providerStatus != models.CheckoutPaid {
		s.log.Info("webhook ignored", "reference", reference, "provider_status", providerStatus)
		return nil
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := s.store.ConfirmPaid(ctx, tx, reference)
	if err != nil {
		return fmt.Errorf("confirm session: %w", err)
	}
	if session == nil {
		return s.classifyUnconfirmed(ctx, reference)
	}

	switch session.Purpose {
	case models.CheckoutChatUnlock:
		err = s.applyUnlock(ctx, tx, session)
	case models.CheckoutCreditPurchase:
		err = s.applyCreditGrant(ctx, tx, session)
	default:
		err = fmt.Errorf("unknown checkout purpose %q", session.Purpose)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("payment confirmed", "reference", reference, "purpose", session.Purpose, "user_id", session.UserID)
	return nil
}

// classifyUnconfirmed decides what a zero-row confirm means: retried
// callback for a paid session (fine), unknown reference, or a session that
// can no longer be paid.
func (s *service) classifyUnconfirmed(ctx context.Context, reference string) error {
	session, err := s.store.GetSession(ctx, reference)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status == models.CheckoutPaid {
		return nil
	}
	return ErrPaymentNotConfirmed
}

func (s *service) applyUnlock(ctx context.Context, tx pgx.Tx, session *models.CheckoutSession) error {
	if session.MatchID == nil {
		return fmt.Errorf("unlock session %s has no match", session.Reference)
	}
	m, err := s.store.GetMatch(ctx, *session.MatchID)
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return ErrMatchNotFound
	}
	unlocked, err := s.store.UnlockChat(ctx, tx, m.ID)
	if err != nil {
		return fmt.Errorf("unlock chat: %w", err)
	}
	if !unlocked {
		// the match was opened by an earlier session; record the payment
		// but do not notify anyone again
		s.log.Warn("unlock confirmed for already open conversation",
			"reference", session.Reference, "match_id", m.ID)
		return nil
	}

	data, _ := json.Marshal(map[string]string{"match_id": m.ID.String()})
	for _, uid := range []uuid.UUID{m.UserA, m.UserB} {
		err := s.insertFn(ctx, tx, notification.SendArgs{
			UserID: uid,
			NType:  models.NotifyChatUnlock,
			Title:  "Conversation unlocked",
			Body:   "You can now chat freely.",
			Data:   data,
		})
		if err != nil {
			return fmt.Errorf("enqueue unlock notification: %w", err)
		}
	}
	return nil
}

func (s *service) applyCreditGrant(ctx context.Context, tx pgx.Tx, session *models.CheckoutSession) error {
	if session.Credits == nil || *session.Credits < 1 {
		return fmt.Errorf("purchase session %s has no credit amount", session.Reference)
	}
	balance, err := s.credits.Grant(ctx, tx, session.UserID, *session.Credits, models.CreditEntryPurchase, &session.Reference)
	if err != nil {
		return fmt.Errorf("grant credits: %w", err)
	}

	data, _ := json.Marshal(map[string]any{"credits": *session.Credits, "balance": balance})
	err = s.insertFn(ctx, tx, notification.SendArgs{
		UserID: session.UserID,
		NType:  models.NotifyCreditGrant,
		Title:  "Credits added",
		Body:   fmt.Sprintf("%d credits were added to your account.", *session.Credits),
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("enqueue credit notification: %w", err)
	}
	return nil
}

// ExpireSessions is the periodic job body.
func (s *service) ExpireSessions(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("checkout sessions expired", "count", n)
	}
	return n, nil
}
