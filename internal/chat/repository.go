package chat

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

// GetMatch returns a match by id, or nil when unknown.
func (r *Repository) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var m models.Match
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_a, user_b, chat_unlocked, unlocked_at, created_at
		FROM matches WHERE id = $1
	`, id).Scan(&m.ID, &m.UserA, &m.UserB, &m.ChatUnlocked, &m.UnlockedAt, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches returns the user's matches, newest first.
func (r *Repository) ListMatches(ctx context.Context, userID uuid.UUID) ([]*models.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_a, user_b, chat_unlocked, unlocked_at, created_at
		FROM matches
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.UserA, &m.UserB, &m.ChatUnlocked, &m.UnlockedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *Repository) InsertMessage(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (match_id, sender_id, msg_type, content, quote_amount_cents, meeting_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at
	`, m.MatchID, m.SenderID, m.MsgType, m.Content, m.QuoteAmountCents, m.MeetingAt).
		Scan(&m.ID, &m.IsRead, &m.CreatedAt)
}

// ListMessages returns a conversation in chronological order.
func (r *Repository) ListMessages(ctx context.Context, matchID uuid.UUID, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, match_id, sender_id, msg_type, content, quote_amount_cents, meeting_at, is_read, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at
		LIMIT $2
	`, matchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.MsgType, &m.Content,
			&m.QuoteAmountCents, &m.MeetingAt, &m.IsRead, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// MarkMessagesRead marks the counterpart's messages in a match as read.
func (r *Repository) MarkMessagesRead(ctx context.Context, matchID, readerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE match_id = $1 AND sender_id <> $2 AND is_read = false
	`, matchID, readerID)
	return err
}
