package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

const docColumns = `id, owner_id, doc_type, file_name, storage_ref, status, admin_comment, reviewed_by, reviewed_at, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, d *models.Document) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO documents (owner_id, doc_type, file_name, storage_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, admin_comment, created_at
	`, d.OwnerID, d.DocType, d.FileName, d.StorageRef).
		Scan(&d.ID, &d.Status, &d.AdminComment, &d.CreatedAt)
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+docColumns+` FROM documents
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListByStatus lists documents platform-wide for admin review. Empty
// status means all.
func (r *Repository) ListByStatus(ctx context.Context, status string, limit int) ([]*models.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+docColumns+` FROM documents ORDER BY created_at LIMIT $1
		`, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+docColumns+` FROM documents WHERE status = $1 ORDER BY created_at LIMIT $2
		`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var d models.Document
	err := r.pool.QueryRow(ctx, `SELECT `+docColumns+` FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.OwnerID, &d.DocType, &d.FileName, &d.StorageRef, &d.Status,
			&d.AdminComment, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Review records the admin decision. Only pending documents can be
// reviewed; returns nil when the document is missing or already decided.
func (r *Repository) Review(ctx context.Context, id, adminID uuid.UUID, status, comment string) (*models.Document, error) {
	var d models.Document
	err := r.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = $2, admin_comment = $3, reviewed_by = $4, reviewed_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+docColumns+`
	`, id, status, comment, adminID).
		Scan(&d.ID, &d.OwnerID, &d.DocType, &d.FileName, &d.StorageRef, &d.Status,
			&d.AdminComment, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDocuments(rows pgx.Rows) ([]*models.Document, error) {
	var out []*models.Document
	for rows.Next() {
		var d models.Document
		err := rows.Scan(&d.ID, &d.OwnerID, &d.DocType, &d.FileName, &d.StorageRef, &d.Status,
			&d.AdminComment, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
