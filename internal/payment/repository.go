package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

const sessionColumns = `reference, user_id, purpose, match_id, credits, amount_cents, currency, status, checkout_url, created_at, expires_at, confirmed_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *Repository) InsertSession(ctx context.Context, s *models.CheckoutSession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO checkout_sessions
			(reference, user_id, purpose, match_id, credits, amount_cents, currency, status, checkout_url, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.Reference, s.UserID, s.Purpose, s.MatchID, s.Credits, s.AmountCents, s.Currency, s.Status, s.CheckoutURL, s.ExpiresAt)
	return err
}

// GetSession returns the session for a reference, or nil when unknown.
func (r *Repository) GetSession(ctx context.Context, reference string) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	err := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM checkout_sessions WHERE reference = $1`, reference).
		Scan(&s.Reference, &s.UserID, &s.Purpose, &s.MatchID, &s.Credits, &s.AmountCents, &s.Currency,
			&s.Status, &s.CheckoutURL, &s.CreatedAt, &s.ExpiresAt, &s.ConfirmedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPendingUnlockSession returns the live pending unlock session for a
// match, or nil. At most one should be open at a time; InitiateUnlock
// hands the existing one back instead of opening another.
func (r *Repository) GetPendingUnlockSession(ctx context.Context, matchID uuid.UUID) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	err := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM checkout_sessions
		WHERE match_id = $1 AND purpose = 'chat_unlock'
		  AND status = 'pending' AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`, matchID).Scan(&s.Reference, &s.UserID, &s.Purpose, &s.MatchID, &s.Credits, &s.AmountCents,
		&s.Currency, &s.Status, &s.CheckoutURL, &s.CreatedAt, &s.ExpiresAt, &s.ConfirmedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetCreditConfig returns the admin-set credit pricing, or nil when the
// platform still runs on the configured default.
func (r *Repository) GetCreditConfig(ctx context.Context) (*models.CreditConfig, error) {
	var c models.CreditConfig
	err := r.pool.QueryRow(ctx, `
		SELECT unit_price_cents, label, updated_by, updated_at FROM credit_configs
	`).Scan(&c.UnitPriceCents, &c.Label, &c.UpdatedBy, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ConfirmPaid flips a live pending session to paid inside the caller's
// transaction. The conditional update is the idempotency mechanism: a
// duplicate callback or a concurrent one matches zero rows and applies no
// effects. Returns the confirmed session, or nil when nothing was updated.
func (r *Repository) ConfirmPaid(ctx context.Context, tx pgx.Tx, reference string) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	err := tx.QueryRow(ctx, `
		UPDATE checkout_sessions
		SET status = 'paid', confirmed_at = now()
		WHERE reference = $1 AND status = 'pending' AND expires_at > now()
		RETURNING `+sessionColumns+`
	`, reference).Scan(&s.Reference, &s.UserID, &s.Purpose, &s.MatchID, &s.Credits, &s.AmountCents,
		&s.Currency, &s.Status, &s.CheckoutURL, &s.CreatedAt, &s.ExpiresAt, &s.ConfirmedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExpireSessions marks overdue pending sessions expired. Called by the
// periodic job; the user can initiate a fresh checkout afterwards.
func (r *Repository) ExpireSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checkout_sessions
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetMatch returns a match by id, or nil when unknown.
func (r *Repository) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var m models.Match
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_a, user_b, chat_unlocked, unlocked_at, created_at
		FROM matches WHERE id = $1
	`, id).Scan(&m.ID, &m.UserA, &m.UserB, &m.ChatUnlocked, &m.UnlockedAt, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UnlockChat opens the conversation inside the caller's transaction. The
// flag only ever moves false -> true; the return reports whether this call
// moved it, so the caller can skip re-notifying an already open chat.
func (r *Repository) UnlockChat(ctx context.Context, tx pgx.Tx, matchID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE matches
		SET chat_unlocked = true, unlocked_at = now()
		WHERE id = $1 AND chat_unlocked = false
	`, matchID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
