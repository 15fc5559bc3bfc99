package swipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swipetonpro/backend/internal/models"
)

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

// UserExists reports whether a swipeable user with the given id exists.
// Admins are never swipe targets.
func (r *Repository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role <> 'admin')
	`, id).Scan(&exists)
	return exists, err
}

// LockPair takes a transaction-scoped advisory lock on the unordered pair.
// The two completing likes of a match write distinct swipe rows, so nothing
// else serializes them; without the lock both reciprocal reads can run
// before either commit and neither transaction creates the match.
func (r *Repository) LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error {
	ua, ub := models.OrderPair(a, b)
	_, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))
	`, ua.String(), ub.String())
	return err
}

// UpsertSwipe records the actor's decision, overwriting any earlier one.
// Returns the previous direction, or nil when this is the first swipe on
// the pair.
func (r *Repository) UpsertSwipe(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID, direction string) (*string, error) {
	var prev *string
	err := tx.QueryRow(ctx, `
		WITH old AS (
			SELECT direction FROM swipes WHERE actor_id = $1 AND target_id = $2
		)
		INSERT INTO swipes (actor_id, target_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, target_id)
		DO UPDATE SET direction = EXCLUDED.direction, updated_at = now()
		RETURNING (SELECT direction FROM old)
	`, actorID, targetID, direction).Scan(&prev)
	return prev, err
}

// HasLike reports whether actor currently likes target.
func (r *Repository) HasLike(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID) (bool, error) {
	var liked bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM swipes
			WHERE actor_id = $1 AND target_id = $2 AND direction = 'like'
		)
	`, actorID, targetID).Scan(&liked)
	return liked, err
}

// InsertMatch creates the match for an unordered pair, or fetches the one
// that already exists. The unique constraint makes the insert race-safe;
// the returned flag tells the caller whether this transaction created it.
func (r *Repository) InsertMatch(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*models.Match, bool, error) {
	ua, ub := models.OrderPair(a, b)
	var m models.Match
	err := tx.QueryRow(ctx, `
		INSERT INTO matches (user_a, user_b)
		VALUES ($1, $2)
		ON CONFLICT (user_a, user_b) DO NOTHING
		RETURNING id, user_a, user_b, chat_unlocked, unlocked_at, created_at
	`, ua, ub).Scan(&m.ID, &m.UserA, &m.UserB, &m.ChatUnlocked, &m.UnlockedAt, &m.CreatedAt)
	if err == nil {
		return &m, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	err = tx.QueryRow(ctx, `
		SELECT id, user_a, user_b, chat_unlocked, unlocked_at, created_at
		FROM matches WHERE user_a = $1 AND user_b = $2
	`, ua, ub).Scan(&m.ID, &m.UserA, &m.UserB, &m.ChatUnlocked, &m.UnlockedAt, &m.CreatedAt)
	if err != nil {
		return nil, false, err
	}
	return &m, false, nil
}

// Deck returns profiles the viewer can swipe on: active professionals for
// seekers (with boosts targeted at this seeker surfaced first, most recent
// boost winning), seekers for professionals. Ghost professionals may browse
// but never appear in anyone's deck.
func (r *Repository) Deck(ctx context.Context, viewer *models.User, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows pgx.Rows
	var err error
	if viewer.Role == models.RoleProfessional {
		rows, err = r.pool.Query(ctx, `
			SELECT `+userColumns+` FROM users u
			WHERE u.role = 'seeker'
			  AND NOT EXISTS (
				SELECT 1 FROM swipes s WHERE s.actor_id = $1 AND s.target_id = u.id
			  )
			ORDER BY u.created_at DESC
			LIMIT $2
		`, viewer.ID, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+userColumns+` FROM users u
			WHERE u.role = 'professional' AND u.verification_status = 'active'
			  AND NOT EXISTS (
				SELECT 1 FROM swipes s WHERE s.actor_id = $1 AND s.target_id = u.id
			  )
			ORDER BY (
				SELECT max(b.created_at) FROM boost_actions b
				WHERE b.pro_id = u.id AND b.target_seeker_id = $1
			) DESC NULLS LAST, u.created_at DESC
			LIMIT $2
		`, viewer.ID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// Likers returns who currently likes the given user, newest like first.
// Ghost professionals and anyone the user already passed on are hidden.
func (r *Repository) Likers(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM swipes s
		JOIN users u ON u.id = s.actor_id
		WHERE s.target_id = $1 AND s.direction = 'like'
		  AND NOT (u.role = 'professional' AND u.verification_status <> 'active')
		  AND NOT EXISTS (
			SELECT 1 FROM swipes p
			WHERE p.actor_id = $1 AND p.target_id = u.id AND p.direction = 'pass'
		  )
		ORDER BY s.updated_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// CountLikers counts likes targeting the user under the same visibility
// rules as Likers, so the count never exceeds what the list can show.
func (r *Repository) CountLikers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM swipes s
		JOIN users u ON u.id = s.actor_id
		WHERE s.target_id = $1 AND s.direction = 'like'
		  AND NOT (u.role = 'professional' AND u.verification_status <> 'active')
		  AND NOT EXISTS (
			SELECT 1 FROM swipes p
			WHERE p.actor_id = $1 AND p.target_id = u.id AND p.direction = 'pass'
		  )
	`, userID).Scan(&n)
	return n, err
}

func scanUsers(rows pgx.Rows) ([]*models.User, error) {
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
