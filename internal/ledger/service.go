package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipetonpro/backend/internal/models"
)

// ErrInsufficientCredits is returned when a debit exceeds the balance.
var ErrInsufficientCredits = errInsufficientCredits

type Service interface {
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, boostID *uuid.UUID) (int, error)
	Grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, checkoutRef *string) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CreditLedger, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, boostID *uuid.UUID) (int, error) {
	return s.repo.Debit(ctx, tx, userID, amount, entryType, boostID)
}

func (s *service) Grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, checkoutRef *string) (int, error) {
	return s.repo.Grant(ctx, tx, userID, amount, entryType, checkoutRef)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CreditLedger, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
