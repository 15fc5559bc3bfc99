package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, role, trade, verification_status, credits, featured, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.Trade,
		&u.VerificationStatus, &u.Credits, &u.Featured, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName, role, trade, verificationStatus string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, display_name, role, trade, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		email, passwordHash, displayName, role, trade, verificationStatus)
	return scanUser(row)
}

// GetByEmail returns nil (no error) when the email is unknown so the caller
// can produce a uniform invalid-credentials error.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetFeatured returns the profile highlighted on the homepage, or nil.
func (r *Repository) GetFeatured(ctx context.Context) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE featured = true LIMIT 1`)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
