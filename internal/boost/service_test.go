package boost

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/swipetonpro/backend/internal/config"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
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

type mockStore struct {
	tx           *fakeTx
	cfg          *models.BoostConfig
	seekerExists bool

	insertedCost int
}

func (m *mockStore) Begin(ctx context.Context) (pgx.Tx, error) { return m.tx, nil }
func (m *mockStore) EffectiveConfig(ctx context.Context, proID uuid.UUID) (*models.BoostConfig, error) {
	return m.cfg, nil
}
func (m *mockStore) SeekerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.seekerExists, nil
}
func (m *mockStore) InsertAction(ctx context.Context, tx pgx.Tx, proID, targetSeekerID uuid.UUID, cost int) (*models.BoostAction, error) {
	m.insertedCost = cost
	return &models.BoostAction{ID: uuid.New(), ProID: proID, TargetSeekerID: targetSeekerID, CostAtTimeOfUse: cost}, nil
}

type mockLedger struct {
	balance int
	err     error

	debited int
	boostID *uuid.UUID
}

func (m *mockLedger) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, boostID *uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.debited = amount
	m.boostID = boostID
	return m.balance - amount, nil
}

func (m *mockLedger) Grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, entryType string, checkoutRef *string) (int, error) {
	return m.balance + amount, nil
}

func (m *mockLedger) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.CreditLedger, error) {
	return nil, nil
}

func activePro() *models.User {
	return &models.User{
		ID:                 uuid.New(),
		DisplayName:        "Marc Plombier",
		Role:               models.RoleProfessional,
		VerificationStatus: models.VerificationActive,
	}
}

func defaults() config.BoostConfig {
	return config.BoostConfig{DefaultCost: 5, DefaultEnabled: false}
}

func TestUseBoostDebitsAndNotifies(t *testing.T) {
	store := &mockStore{
		tx:           &fakeTx{},
		cfg:          &models.BoostConfig{Cost: 3, Enabled: true},
		seekerExists: true,
	}
	credits := &mockLedger{balance: 10}
	var sent []notification.SendArgs
	insertFn := func(ctx context.Context, tx pgx.Tx, args notification.SendArgs) error {
		sent = append(sent, args)
		return nil
	}
	svc := NewService(store, credits, insertFn, defaults(), nil)

	pro := activePro()
	seekerID := uuid.New()
	left, err := svc.UseBoost(context.Background(), pro, seekerID)
	require.NoError(t, err)
	require.Equal(t, 7, left)
	require.Equal(t, 3, store.insertedCost)
	require.Equal(t, 3, credits.debited)
	require.NotNil(t, credits.boostID)
	require.True(t, store.tx.committed)

	require.Len(t, sent, 1)
	require.Equal(t, seekerID, sent[0].UserID)
	require.Equal(t, models.NotifyBoost, sent[0].NType)
}

func TestUseBoostDisabledByDefault(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, cfg: nil, seekerExists: true}
	svc := NewService(store, &mockLedger{balance: 10}, nil, defaults(), nil)

	_, err := svc.UseBoost(context.Background(), activePro(), uuid.New())
	require.ErrorIs(t, err, ErrBoostDisabled)
}

func TestUseBoostGhostProForbidden(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, cfg: &models.BoostConfig{Cost: 3, Enabled: true}, seekerExists: true}
	svc := NewService(store, &mockLedger{balance: 10}, nil, defaults(), nil)

	pro := activePro()
	pro.VerificationStatus = models.VerificationPending
	_, err := svc.UseBoost(context.Background(), pro, uuid.New())
	require.ErrorIs(t, err, ErrGhostPro)

	_, err = svc.UseBoost(context.Background(), &models.User{ID: uuid.New(), Role: models.RoleSeeker}, uuid.New())
	require.ErrorIs(t, err, ErrNotAPro)
}

func TestUseBoostInsufficientCredits(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, cfg: &models.BoostConfig{Cost: 3, Enabled: true}, seekerExists: true}
	credits := &mockLedger{err: ledger.ErrInsufficientCredits}
	insertFn := func(ctx context.Context, tx pgx.Tx, args notification.SendArgs) error { return nil }
	svc := NewService(store, credits, insertFn, defaults(), nil)

	_, err := svc.UseBoost(context.Background(), activePro(), uuid.New())
	require.ErrorIs(t, err, ledger.ErrInsufficientCredits)
	require.False(t, store.tx.committed)
	require.True(t, store.tx.rolledBack)
}

func TestUseBoostTargetMustBeSeeker(t *testing.T) {
	store := &mockStore{tx: &fakeTx{}, cfg: &models.BoostConfig{Cost: 3, Enabled: true}, seekerExists: false}
	svc := NewService(store, &mockLedger{balance: 10}, nil, defaults(), nil)

	_, err := svc.UseBoost(context.Background(), activePro(), uuid.New())
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestEffectiveConfigFallsBackToDefaults(t *testing.T) {
	store := &mockStore{cfg: nil}
	svc := NewService(store, &mockLedger{}, nil, config.BoostConfig{DefaultCost: 5, DefaultEnabled: true}, nil)

	cost, enabled, err := svc.EffectiveConfig(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 5, cost)
	require.True(t, enabled)
}
