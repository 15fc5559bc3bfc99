package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

var errInsufficientCredits = errors.New("insufficient credits")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Debit runs inside the caller's transaction. The decrement is conditional
// (`WHERE credits >= $1`) so two concurrent debits can never both succeed
// on one debit's worth of balance; the loser sees zero rows affected.
func (r *Repository) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, boostID *uuid.UUID) (int, error) {
	var balance int
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET credits = credits - $1, updated_at = now()
		WHERE id = $2 AND credits >= $1
		RETURNING credits
	`, amount, userID)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errInsufficientCredits
		}
		return 0, err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_ledger (user_id, entry_type, amount, balance_after, boost_id)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, entryType, -amount, balance, boostID)
	return balance, err
}

// Grant runs inside the caller's transaction: adds credits and records the
// ledger entry with the checkout reference that paid for them.
func (r *Repository) Grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, checkoutRef *string) (int, error) {
	var balance int
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET credits = credits + $1, updated_at = now()
		WHERE id = $2
		RETURNING credits
	`, amount, userID)
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_ledger (user_id, entry_type, amount, balance_after, checkout_ref)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, entryType, amount, balance, checkoutRef)
	return balance, err
}

// ListByUser returns the newest ledger entries for a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CreditLedger, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, entry_type, amount, balance_after, checkout_ref, boost_id, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CreditLedger
	for rows.Next() {
		var e models.CreditLedger
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.CheckoutRef, &e.BoostID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
