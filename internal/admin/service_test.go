package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/models"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { t.rolledBack = true; return nil }
func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(ctx context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                                 { return nil }

type auditRecord struct {
	action     string
	entityType string
	entityID   string
}

type mockStore struct {
	tx             *fakeTx
	statusUpdated  bool
	boostCfg       *models.BoostConfig
	creditCfg      *models.CreditConfig
	resolvedReport *models.Report
	stats          *Stats

	audits []auditRecord
}

func (m *mockStore) Begin(ctx context.Context) (pgx.Tx, error) { return m.tx, nil }
func (m *mockStore) Pool() Querier                             { return &fakeTx{} }
func (m *mockStore) ListUsers(ctx context.Context, f UserFilter) ([]*models.User, error) {
	return nil, nil
}
func (m *mockStore) SetVerificationStatus(ctx context.Context, tx pgx.Tx, userID uuid.UUID, status string) (bool, error) {
	return m.statusUpdated, nil
}
func (m *mockStore) GetBoostConfig(ctx context.Context, proID *uuid.UUID) (*models.BoostConfig, error) {
	return m.boostCfg, nil
}
func (m *mockStore) UpsertBoostConfig(ctx context.Context, tx pgx.Tx, proID *uuid.UUID, cost int, enabled bool, adminID uuid.UUID) (*models.BoostConfig, error) {
	m.boostCfg = &models.BoostConfig{ProID: proID, Cost: cost, Enabled: enabled, UpdatedBy: &adminID}
	return m.boostCfg, nil
}
func (m *mockStore) GetCreditConfig(ctx context.Context) (*models.CreditConfig, error) {
	return m.creditCfg, nil
}
func (m *mockStore) UpsertCreditConfig(ctx context.Context, tx pgx.Tx, unitPriceCents int, label string, adminID uuid.UUID) (*models.CreditConfig, error) {
	m.creditCfg = &models.CreditConfig{UnitPriceCents: unitPriceCents, Label: label, UpdatedBy: &adminID}
	return m.creditCfg, nil
}
func (m *mockStore) InsertReport(ctx context.Context, rep *models.Report) error {
	rep.ID = uuid.New()
	rep.Status = models.ReportPending
	return nil
}
func (m *mockStore) ListReports(ctx context.Context, status string, limit int) ([]*models.Report, error) {
	return nil, nil
}
func (m *mockStore) ResolveReport(ctx context.Context, tx pgx.Tx, id, adminID uuid.UUID, status, note string) (*models.Report, error) {
	return m.resolvedReport, nil
}
func (m *mockStore) Stats(ctx context.Context) (*Stats, error) { return m.stats, nil }
func (m *mockStore) InsertAudit(ctx context.Context, q Querier, adminID uuid.UUID, action, entityType, entityID string, details any) error {
	m.audits = append(m.audits, auditRecord{action: action, entityType: entityType, entityID: entityID})
	return nil
}
func (m *mockStore) ListAudit(ctx context.Context, f AuditFilter) ([]*models.AuditEntry, error) {
	return nil, nil
}

type mockDocs struct {
	reviewed *models.Document
	err      error
}

func (d *mockDocs) Upload(ctx context.Context, owner *models.User, docType, fileName string, content []byte) (*models.Document, error) {
	return nil, nil
}
func (d *mockDocs) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error) {
	return nil, nil
}
func (d *mockDocs) ListForReview(ctx context.Context, status string, limit int) ([]*models.Document, error) {
	return nil, nil
}
func (d *mockDocs) Review(ctx context.Context, adminID, docID uuid.UUID, approve bool, comment string) (*models.Document, error) {
	return d.reviewed, d.err
}

type mockLedger struct {
	balance int
	err     error

	granted int
	debited int
}

func (m *mockLedger) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, boostID *uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.debited = amount
	return m.balance - amount, nil
}
func (m *mockLedger) Grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, checkoutRef *string) (int, error) {
	m.granted = amount
	return m.balance + amount, nil
}
func (m *mockLedger) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CreditLedger, error) {
	return nil, nil
}

func TestSetVerificationStatusAuditsInTx(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, statusUpdated: true}
	svc := NewService(store, &mockDocs{}, &mockLedger{}, nil)

	adminID, userID := uuid.New(), uuid.New()
	require.NoError(t, svc.SetVerificationStatus(context.Background(), adminID, userID, models.VerificationActive))
	require.True(t, store.tx.committed)
	require.Len(t, store.audits, 1)
	require.Equal(t, ActionSetVerification, store.audits[0].action)
	require.Equal(t, userID.String(), store.audits[0].entityID)
}

func TestSetVerificationStatusValidation(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, statusUpdated: false}
	svc := NewService(store, &mockDocs{}, &mockLedger{}, nil)

	err := svc.SetVerificationStatus(context.Background(), uuid.New(), uuid.New(), "verified")
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Empty(t, store.audits)

	err = svc.SetVerificationStatus(context.Background(), uuid.New(), uuid.New(), models.VerificationActive)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.False(t, store.tx.committed)
}

func TestReviewDocumentWritesAudit(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}}
	docs := &mockDocs{reviewed: &models.Document{ID: uuid.New(), Status: models.DocumentApproved}}
	svc := NewService(store, docs, &mockLedger{}, nil)

	doc, err := svc.ReviewDocument(context.Background(), uuid.New(), docs.reviewed.ID, true, "ok")
	require.NoError(t, err)
	require.Equal(t, models.DocumentApproved, doc.Status)
	require.Len(t, store.audits, 1)
	require.Equal(t, ActionReviewDocument, store.audits[0].action)
}

func TestSetBoostConfigGlobalAndPerPro(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}}
	svc := NewService(store, &mockDocs{}, &mockLedger{}, nil)
	adminID := uuid.New()

	cfg, err := svc.SetBoostConfig(context.Background(), adminID, nil, 5, true)
	require.NoError(t, err)
	require.Nil(t, cfg.ProID)
	require.Equal(t, "global", store.audits[0].entityID)

	proID := uuid.New()
	cfg, err = svc.SetBoostConfig(context.Background(), adminID, &proID, 2, true)
	require.NoError(t, err)
	require.Equal(t, proID, *cfg.ProID)
	require.Equal(t, proID.String(), store.audits[1].entityID)

	_, err = svc.SetBoostConfig(context.Background(), adminID, nil, 0, true)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResolveReportNotFound(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, resolvedReport: nil}
	svc := NewService(store, &mockDocs{}, &mockLedger{}, nil)

	_, err := svc.ResolveReport(context.Background(), uuid.New(), uuid.New(), false, "")
	require.ErrorIs(t, err, ErrReportNotFound)
	require.Empty(t, store.audits)
}

func TestAdjustCredits(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}}
	led := &mockLedger{balance: 10}
	svc := NewService(store, &mockDocs{}, led, nil)
	adminID, userID := uuid.New(), uuid.New()

	balance, err := svc.AdjustCredits(context.Background(), adminID, userID, 5)
	require.NoError(t, err)
	require.Equal(t, 15, balance)
	require.Equal(t, 5, led.granted)

	balance, err = svc.AdjustCredits(context.Background(), adminID, userID, -3)
	require.NoError(t, err)
	require.Equal(t, 7, balance)
	require.Equal(t, 3, led.debited)

	_, err = svc.AdjustCredits(context.Background(), adminID, userID, 0)
	require.ErrorIs(t, err, ErrZeroAdjustment)

	require.Len(t, store.audits, 2)
	for _, a := range store.audits {
		require.Equal(t, ActionAdjustCredits, a.action)
	}
}

func TestAdjustCreditsInsufficient(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}}
	led := &mockLedger{err: ledger.ErrInsufficientCredits}
	svc := NewService(store, &mockDocs{}, led, nil)

	_, err := svc.AdjustCredits(context.Background(), uuid.New(), uuid.New(), -5)
	require.ErrorIs(t, err, ledger.ErrInsufficientCredits)
	require.False(t, store.tx.committed)
}
