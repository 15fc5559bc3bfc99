package boost

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

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// EffectiveConfig resolves the boost pricing for a professional: the
// per-pro override row wins, then the global row (pro_id NULL). Returns nil
// when neither exists, in which case the service falls back to its
// configured defaults.
func (r *Repository) EffectiveConfig(ctx context.Context, proID uuid.UUID) (*models.BoostConfig, error) {
	var c models.BoostConfig
	err := r.pool.QueryRow(ctx, `
		SELECT pro_id, cost, enabled, updated_by, updated_at
		FROM boost_configs
		WHERE pro_id = $1 OR pro_id IS NULL
		ORDER BY pro_id NULLS LAST
		LIMIT 1
	`, proID).Scan(&c.ProID, &c.Cost, &c.Enabled, &c.UpdatedBy, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SeekerExists reports whether the given id is a seeker account.
func (r *Repository) SeekerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'seeker')
	`, id).Scan(&exists)
	return exists, err
}

// InsertAction records the boost inside the caller's transaction.
func (r *Repository) InsertAction(ctx context.Context, tx pgx.Tx, proID, targetSeekerID uuid.UUID, cost int) (*models.BoostAction, error) {
	var a models.BoostAction
	err := tx.QueryRow(ctx, `
		INSERT INTO boost_actions (pro_id, target_seeker_id, cost_at_time_of_use)
		VALUES ($1, $2, $3)
		RETURNING id, pro_id, target_seeker_id, cost_at_time_of_use, created_at
	`, proID, targetSeekerID, cost).Scan(&a.ID, &a.ProID, &a.TargetSeekerID, &a.CostAtTimeOfUse, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
