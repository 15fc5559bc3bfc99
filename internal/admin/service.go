package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipetonpro/backend/internal/documents"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/models"
)

// Audit actions.
const (
	ActionSetVerification = "set_verification_status"
	ActionReviewDocument  = "review_document"
	ActionSetBoostConfig  = "set_boost_config"
	ActionSetCreditConfig = "set_credit_config"
	ActionResolveReport   = "resolve_report"
	ActionAdjustCredits   = "adjust_credits"
)

var (
	ErrUserNotFound   = errors.New("user not found or not a professional")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrReportNotFound = errors.New("report not found or already closed")
	ErrZeroAdjustment = errors.New("credit adjustment must be non-zero")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Pool() Querier
	ListUsers(ctx context.Context, f UserFilter) ([]*models.User, error)
	SetVerificationStatus(ctx context.Context, tx pgx.Tx, userID uuid.UUID, status string) (bool, error)
	GetBoostConfig(ctx context.Context, proID *uuid.UUID) (*models.BoostConfig, error)
	UpsertBoostConfig(ctx context.Context, tx pgx.Tx, proID *uuid.UUID, cost int, enabled bool, adminID uuid.UUID) (*models.BoostConfig, error)
	GetCreditConfig(ctx context.Context) (*models.CreditConfig, error)
	UpsertCreditConfig(ctx context.Context, tx pgx.Tx, unitPriceCents int, label string, adminID uuid.UUID) (*models.CreditConfig, error)
	InsertReport(ctx context.Context, rep *models.Report) error
	ListReports(ctx context.Context, status string, limit int) ([]*models.Report, error)
	ResolveReport(ctx context.Context, tx pgx.Tx, id, adminID uuid.UUID, status, note string) (*models.Report, error)
	Stats(ctx context.Context) (*Stats, error)
	InsertAudit(ctx context.Context, q Querier, adminID uuid.UUID, action, entityType, entityID string, details any) error
	ListAudit(ctx context.Context, f AuditFilter) ([]*models.AuditEntry, error)
}

type Service interface {
	ListUsers(ctx context.Context, f UserFilter) ([]*models.User, error)
	SetVerificationStatus(ctx context.Context, adminID, userID uuid.UUID, status string) error
	ListDocuments(ctx context.Context, status string, limit int) ([]*models.Document, error)
	ReviewDocument(ctx context.Context, adminID, docID uuid.UUID, approve bool, comment string) (*models.Document, error)
	BoostConfig(ctx context.Context, proID *uuid.UUID) (*models.BoostConfig, error)
	SetBoostConfig(ctx context.Context, adminID uuid.UUID, proID *uuid.UUID, cost int, enabled bool) (*models.BoostConfig, error)
	CreditConfig(ctx context.Context) (*models.CreditConfig, error)
	SetCreditConfig(ctx context.Context, adminID uuid.UUID, unitPriceCents int, label string) (*models.CreditConfig, error)
	FileReport(ctx context.Context, reporterID, reportedID uuid.UUID, reason string) (*models.Report, error)
	ListReports(ctx context.Context, status string, limit int) ([]*models.Report, error)
	ResolveReport(ctx context.Context, adminID, reportID uuid.UUID, dismiss bool, note string) (*models.Report, error)
	AdjustCredits(ctx context.Context, adminID, userID uuid.UUID, delta int) (int, error)
	Stats(ctx context.Context) (*Stats, error)
	AuditLog(ctx context.Context, f AuditFilter) ([]*models.AuditEntry, error)
}

type service struct {
	store   Store
	docs    documents.Service
	credits ledger.Service
	log     *slog.Logger
}

func NewService(store Store, docs documents.Service, credits ledger.Service, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, docs: docs, credits: credits, log: log}
}

var _ Service = (*service)(nil)

func (s *service) ListUsers(ctx context.Context, f UserFilter) ([]*models.User, error) {
	return s.store.ListUsers(ctx, f)
}

// SetVerificationStatus is the only way a professional becomes visible.
// The status change and its audit row commit together.
func (s *service) SetVerificationStatus(ctx context.Context, adminID, userID uuid.UUID, status string) error {
	switch status {
	case models.VerificationPending, models.VerificationActive, models.VerificationRejected:
	default:
		return ErrInvalidStatus
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.store.SetVerificationStatus(ctx, tx, userID, status)
	if err != nil {
		return fmt.Errorf("set verification status: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	err = s.store.InsertAudit(ctx, tx, adminID, ActionSetVerification, "user", userID.String(),
		map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("verification status set", "admin_id", adminID, "user_id", userID, "status", status)
	return nil
}

func (s *service) ListDocuments(ctx context.Context, status string, limit int) ([]*models.Document, error) {
	return s.docs.ListForReview(ctx, status, limit)
}

// ReviewDocument approves or rejects an upload. Approval never activates
// the owner; that stays an explicit SetVerificationStatus call.
func (s *service) ReviewDocument(ctx context.Context, adminID, docID uuid.UUID, approve bool, comment string) (*models.Document, error) {
	doc, err := s.docs.Review(ctx, adminID, docID, approve, comment)
	if err != nil {
		return nil, err
	}
	err = s.store.InsertAudit(ctx, s.store.Pool(), adminID, ActionReviewDocument, "document", docID.String(),
		map[string]any{"approved": approve, "comment": comment})
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return doc, nil
}

func (s *service) BoostConfig(ctx context.Context, proID *uuid.UUID) (*models.BoostConfig, error) {
	return s.store.GetBoostConfig(ctx, proID)
}

func (s *service) SetBoostConfig(ctx context.Context, adminID uuid.UUID, proID *uuid.UUID, cost int, enabled bool) (*models.BoostConfig, error) {
	if cost < 1 {
		return nil, fmt.Errorf("%w: cost must be positive", ErrInvalidStatus)
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cfg, err := s.store.UpsertBoostConfig(ctx, tx, proID, cost, enabled, adminID)
	if err != nil {
		return nil, fmt.Errorf("upsert boost config: %w", err)
	}
	entityID := "global"
	if proID != nil {
		entityID = proID.String()
	}
	err = s.store.InsertAudit(ctx, tx, adminID, ActionSetBoostConfig, "boost_config", entityID,
		map[string]any{"cost": cost, "enabled": enabled})
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cfg, nil
}

func (s *service) CreditConfig(ctx context.Context) (*models.CreditConfig, error) {
	return s.store.GetCreditConfig(ctx)
}

func (s *service) SetCreditConfig(ctx context.Context, adminID uuid.UUID, unitPriceCents int, label string) (*models.CreditConfig, error) {
	if unitPriceCents < 1 {
		return nil, fmt.Errorf("%w: unit price must be positive", ErrInvalidStatus)
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cfg, err := s.store.UpsertCreditConfig(ctx, tx, unitPriceCents, label, adminID)
	if err != nil {
		return nil, fmt.Errorf("upsert credit config: %w", err)
	}
	err = s.store.InsertAudit(ctx, tx, adminID, ActionSetCreditConfig, "credit_config", "global",
		map[string]any{"unit_price_cents": unitPriceCents, "label": label})
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cfg, nil
}

// FileReport is open to any authenticated user, not only admins, so it
// writes no audit row.
func (s *service) FileReport(ctx context.Context, reporterID, reportedID uuid.UUID, reason string) (*models.Report, error) {
	rep := &models.Report{ReporterID: reporterID, ReportedID: reportedID, Reason: reason}
	if err := s.store.InsertReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return rep, nil
}

func (s *service) ListReports(ctx context.Context, status string, limit int) ([]*models.Report, error) {
	return s.store.ListReports(ctx, status, limit)
}

func (s *service) ResolveReport(ctx context.Context, adminID, reportID uuid.UUID, dismiss bool, note string) (*models.Report, error) {
	status := models.ReportResolved
	if dismiss {
		status = models.ReportDismissed
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rep, err := s.store.ResolveReport(ctx, tx, reportID, adminID, status, note)
	if err != nil {
		return nil, fmt.Errorf("resolve report: %w", err)
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}
	err = s.store.InsertAudit(ctx, tx, adminID, ActionResolveReport, "report", reportID.String(),
		map[string]string{"status": status, "note": note})
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rep, nil
}

// AdjustCredits grants or claws back credits manually. Negative deltas go
// through the conditional debit, so an account can never be pushed below
// zero.
func (s *service) AdjustCredits(ctx context.Context, adminID, userID uuid.UUID, delta int) (int, error) {
	if delta == 0 {
		return 0, ErrZeroAdjustment
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int
	if delta > 0 {
		balance, err = s.credits.Grant(ctx, tx, userID, delta, models.CreditEntryAdminAdjust, nil)
	} else {
		balance, err = s.credits.Debit(ctx, tx, userID, -delta, models.CreditEntryAdminAdjust, nil)
	}
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return 0, err
		}
		return 0, fmt.Errorf("adjust credits: %w", err)
	}
	err = s.store.InsertAudit(ctx, tx, adminID, ActionAdjustCredits, "user", userID.String(),
		map[string]int{"delta": delta, "balance": balance})
	if err != nil {
		return 0, fmt.Errorf("audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Info("credits adjusted", "admin_id", adminID, "user_id", userID, "delta", delta, "balance", balance)
	return balance, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *service) AuditLog(ctx context.Context, f AuditFilter) ([]*models.AuditEntry, error) {
	return s.store.ListAudit(ctx, f)
}
