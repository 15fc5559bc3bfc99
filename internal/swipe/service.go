package swipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
)

var (
	ErrSelfSwipe        = errors.New("cannot swipe on yourself")
	ErrInvalidDirection = errors.New("direction must be like or pass")
	ErrTargetNotFound   = errors.New("swipe target not found")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error
	UpsertSwipe(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID, direction string) (*string, error)
	HasLike(ctx context.Context, tx pgx.Tx, actorID, targetID uuid.UUID) (bool, error)
	InsertMatch(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*models.Match, bool, error)
	Deck(ctx context.Context, viewer *models.User, limit int) ([]*models.User, error)
	Likers(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error)
	CountLikers(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Counter is the like-counter cache surface. *cache.LikeCounts satisfies
// it.
type Counter interface {
	Get(ctx context.Context, userID string) (int64, bool, error)
	Set(ctx context.Context, userID string, count int64) error
	Invalidate(ctx context.Context, userID string) error
}

// Result is the outcome of a recorded swipe.
type Result struct {
	Matched bool       `json:"matched"`
	MatchID *uuid.UUID `json:"match_id,omitempty"`
}

type Service interface {
	RecordSwipe(ctx context.Context, actor *models.User, targetID uuid.UUID, direction string) (*Result, error)
	Deck(ctx context.Context, viewer *models.User, limit int) ([]*models.User, error)
	Likes(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, int64, error)
}

type service struct {
	store    Store
	counts   Counter
	insertFn notification.InsertTxFunc
	log      *slog.Logger
}

func NewService(store Store, counts Counter, insertFn notification.InsertTxFunc, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, counts: counts, insertFn: insertFn, log: log}
}

var _ Service = (*service)(nil)

// RecordSwipe upserts the actor's decision and, on a reciprocal like,
// creates the match. Swipe, reciprocal check, match insert and match
// notifications share one transaction, serialized per unordered pair by an
// advisory lock so the second of two concurrent completing likes always
// sees the first; only the transaction that actually inserted the match row
// enqueues notifications.
func (s *service) RecordSwipe(ctx context.Context, actor *models.User, targetID uuid.UUID, direction string) (*Result, error) {
	if direction != models.DirectionLike && direction != models.DirectionPass {
		return nil, ErrInvalidDirection
	}
	if actor.ID == targetID {
		return nil, ErrSelfSwipe
	}
	exists, err := s.store.UserExists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return nil, ErrTargetNotFound
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.LockPair(ctx, tx, actor.ID, targetID); err != nil {
		return nil, fmt.Errorf("lock pair: %w", err)
	}

	prev, err := s.store.UpsertSwipe(ctx, tx, actor.ID, targetID, direction)
	if err != nil {
		return nil, fmt.Errorf("upsert swipe: %w", err)
	}

	res := &Result{}
	if direction == models.DirectionLike {
		liked, err := s.store.HasLike(ctx, tx, targetID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("reciprocal check: %w", err)
		}
		if liked {
			m, inserted, err := s.store.InsertMatch(ctx, tx, actor.ID, targetID)
			if err != nil {
				return nil, fmt.Errorf("insert match: %w", err)
			}
			res.Matched = true
			res.MatchID = &m.ID
			if inserted {
				if err := s.notifyMatch(ctx, tx, m); err != nil {
					return nil, fmt.Errorf("enqueue match notifications: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.invalidateCounter(ctx, targetID, prev, direction)
	return res, nil
}

func (s *service) notifyMatch(ctx context.Context, tx pgx.Tx, m *models.Match) error {
	data, _ := json.Marshal(map[string]string{"match_id": m.ID.String()})
	for _, uid := range []uuid.UUID{m.UserA, m.UserB} {
		err := s.insertFn(ctx, tx, notification.SendArgs{
			UserID: uid,
			NType:  models.NotifyMatch,
			Title:  "It's a match!",
			Body:   "You and your match can now get in touch.",
			Data:   data,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// invalidateCounter drops the cached liker count when the like state of the
// pair changed; the next read recomputes the filtered count from the DB.
// Best effort: a failed delete only costs staleness until the TTL runs out.
func (s *service) invalidateCounter(ctx context.Context, targetID uuid.UUID, prev *string, direction string) {
	was := prev != nil && *prev == models.DirectionLike
	is := direction == models.DirectionLike
	if was == is {
		return
	}
	if err := s.counts.Invalidate(ctx, targetID.String()); err != nil {
		s.log.Warn("like counter invalidate failed", "target_id", targetID, "error", err)
	}
}

func (s *service) Deck(ctx context.Context, viewer *models.User, limit int) ([]*models.User, error) {
	return s.store.Deck(ctx, viewer, limit)
}

// Likes returns who liked the user plus the total like count, serving the
// count cache-first and falling back to the DB on a miss.
func (s *service) Likes(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, int64, error) {
	likers, err := s.store.Likers(ctx, userID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list likers: %w", err)
	}

	count, found, err := s.counts.Get(ctx, userID.String())
	if err != nil {
		s.log.Warn("like counter read failed", "user_id", userID, "error", err)
		found = false
	}
	if !found {
		count, err = s.store.CountLikers(ctx, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("count likers: %w", err)
		}
		if err := s.counts.Set(ctx, userID.String(), count); err != nil {
			s.log.Warn("like counter write failed", "user_id", userID, "error", err)
		}
	}
	return likers, count, nil
}
