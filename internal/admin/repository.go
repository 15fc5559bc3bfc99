package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

// Querier is the common Exec surface of pgx.Tx and *pgxpool.Pool, so audit
// rows can join the mutation's transaction when there is one.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const userColumns = `id, email, password_hash, display_name, role, trade, verification_status, credits, featured, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Pool exposes the pool as a Querier for audit rows that have no
// surrounding transaction.
func (r *Repository) Pool() Querier {
	return r.pool
}

// UserFilter narrows ListUsers. Zero values mean no filtering.
type UserFilter struct {
	Role   string
	Status string
	Page   int
	Limit  int
}

func (r *Repository) ListUsers(ctx context.Context, f UserFilter) ([]*models.User, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}

	var conds []string
	var args []any
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("verification_status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.Trade,
			&u.VerificationStatus, &u.Credits, &u.Featured, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// SetVerificationStatus flips a professional's visibility. Returns false
// when the user is missing or not a professional.
func (r *Repository) SetVerificationStatus(ctx context.Context, tx pgx.Tx, userID uuid.UUID, status string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET verification_status = $2, updated_at = now()
		WHERE id = $1 AND role = 'professional'
	`, userID, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetBoostConfig fetches the global row (proID nil) or a per-pro override.
// Returns nil when the row does not exist.
func (r *Repository) GetBoostConfig(ctx context.Context, proID *uuid.UUID) (*models.BoostConfig, error) {
	var c models.BoostConfig
	var err error
	if proID == nil {
		err = r.pool.QueryRow(ctx, `
			SELECT pro_id, cost, enabled, updated_by, updated_at
			FROM boost_configs WHERE pro_id IS NULL
		`).Scan(&c.ProID, &c.Cost, &c.Enabled, &c.UpdatedBy, &c.UpdatedAt)
	} else {
		err = r.pool.QueryRow(ctx, `
			SELECT pro_id, cost, enabled, updated_by, updated_at
			FROM boost_configs WHERE pro_id = $1
		`, *proID).Scan(&c.ProID, &c.Cost, &c.Enabled, &c.UpdatedBy, &c.UpdatedAt)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertBoostConfig writes the global row or a per-pro override. The
// UNIQUE NULLS NOT DISTINCT constraint makes the NULL pro_id row a proper
// upsert target.
func (r *Repository) UpsertBoostConfig(ctx context.Context, tx pgx.Tx, proID *uuid.UUID, cost int, enabled bool, adminID uuid.UUID) (*models.BoostConfig, error) {
	var c models.BoostConfig
	err := tx.QueryRow(ctx, `
		INSERT INTO boost_configs (pro_id, cost, enabled, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pro_id)
		DO UPDATE SET cost = EXCLUDED.cost, enabled = EXCLUDED.enabled,
			updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING pro_id, cost, enabled, updated_by, updated_at
	`, proID, cost, enabled, adminID).Scan(&c.ProID, &c.Cost, &c.Enabled, &c.UpdatedBy, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

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

func (r *Repository) UpsertCreditConfig(ctx context.Context, tx pgx.Tx, unitPriceCents int, label string, adminID uuid.UUID) (*models.CreditConfig, error) {
	var c models.CreditConfig
	err := tx.QueryRow(ctx, `
		INSERT INTO credit_configs (singleton, unit_price_cents, label, updated_by)
		VALUES (true, $1, $2, $3)
		ON CONFLICT (singleton)
		DO UPDATE SET unit_price_cents = EXCLUDED.unit_price_cents, label = EXCLUDED.label,
			updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING unit_price_cents, label, updated_by, updated_at
	`, unitPriceCents, label, adminID).Scan(&c.UnitPriceCents, &c.Label, &c.UpdatedBy, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) InsertReport(ctx context.Context, rep *models.Report) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO reports (reporter_id, reported_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at
	`, rep.ReporterID, rep.ReportedID, rep.Reason).Scan(&rep.ID, &rep.Status, &rep.CreatedAt)
}

func (r *Repository) ListReports(ctx context.Context, status string, limit int) ([]*models.Report, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows pgx.Rows
	var err error
	const cols = `id, reporter_id, reported_id, reason, status, resolution_note, resolved_by, created_at, resolved_at`
	if status == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+cols+` FROM reports ORDER BY created_at LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+cols+` FROM reports WHERE status = $1 ORDER BY created_at LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		var rep models.Report
		err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.ReportedID, &rep.Reason, &rep.Status,
			&rep.ResolutionNote, &rep.ResolvedBy, &rep.CreatedAt, &rep.ResolvedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

// ResolveReport closes a pending report. Returns nil when the report is
// missing or already closed.
func (r *Repository) ResolveReport(ctx context.Context, tx pgx.Tx, id, adminID uuid.UUID, status, note string) (*models.Report, error) {
	var rep models.Report
	err := tx.QueryRow(ctx, `
		UPDATE reports
		SET status = $2, resolution_note = $3, resolved_by = $4, resolved_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, reporter_id, reported_id, reason, status, resolution_note, resolved_by, created_at, resolved_at
	`, id, status, note, adminID).Scan(&rep.ID, &rep.ReporterID, &rep.ReportedID, &rep.Reason,
		&rep.Status, &rep.ResolutionNote, &rep.ResolvedBy, &rep.CreatedAt, &rep.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	Seekers          int64 `json:"seekers"`
	Professionals    int64 `json:"professionals"`
	ActivePros       int64 `json:"active_professionals"`
	GhostPros        int64 `json:"ghost_professionals"`
	Matches          int64 `json:"matches"`
	UnlockedMatches  int64 `json:"unlocked_matches"`
	PendingDocuments int64 `json:"pending_documents"`
	PendingReports   int64 `json:"pending_reports"`
}

func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users WHERE role = 'seeker'),
			(SELECT count(*) FROM users WHERE role = 'professional'),
			(SELECT count(*) FROM users WHERE role = 'professional' AND verification_status = 'active'),
			(SELECT count(*) FROM users WHERE role = 'professional' AND verification_status <> 'active'),
			(SELECT count(*) FROM matches),
			(SELECT count(*) FROM matches WHERE chat_unlocked),
			(SELECT count(*) FROM documents WHERE status = 'pending'),
			(SELECT count(*) FROM reports WHERE status = 'pending')
	`).Scan(&s.Seekers, &s.Professionals, &s.ActivePros, &s.GhostPros,
		&s.Matches, &s.UnlockedMatches, &s.PendingDocuments, &s.PendingReports)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertAudit writes one audit row. Runs on the caller's transaction when
// the mutation is transactional, otherwise on the pool.
func (r *Repository) InsertAudit(ctx context.Context, q Querier, adminID uuid.UUID, action, entityType, entityID string, details any) error {
	var payload []byte
	if details != nil {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}
	_, err := q.Exec(ctx, `
		INSERT INTO audit_log (admin_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`, adminID, action, entityType, entityID, payload)
	return err
}

// AuditFilter narrows ListAudit. Zero values mean no filtering.
type AuditFilter struct {
	Action  string
	AdminID *uuid.UUID
	Limit   int
}

func (r *Repository) ListAudit(ctx context.Context, f AuditFilter) ([]*models.AuditEntry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var conds []string
	var args []any
	if f.Action != "" {
		args = append(args, f.Action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if f.AdminID != nil {
		args = append(args, *f.AdminID)
		conds = append(conds, fmt.Sprintf("admin_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	q := fmt.Sprintf(`
		SELECT id, admin_id, action, entity_type, entity_id, details, created_at
		FROM audit_log %s ORDER BY created_at DESC LIMIT $%d
	`, where, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
