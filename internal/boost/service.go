package boost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipetonpro/backend/internal/config"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/notification"
)

var (
	ErrBoostDisabled  = errors.New("boost is disabled")
	ErrGhostPro       = errors.New("professional is not verified")
	ErrNotAPro        = errors.New("only professionals can boost")
	ErrTargetNotFound = errors.New("target seeker not found")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	EffectiveConfig(ctx context.Context, proID uuid.UUID) (*models.BoostConfig, error)
	SeekerExists(ctx context.Context, id uuid.UUID) (bool, error)
	InsertAction(ctx context.Context, tx pgx.Tx, proID, targetSeekerID uuid.UUID, cost int) (*models.BoostAction, error)
}

type Service interface {
	UseBoost(ctx context.Context, pro *models.User, targetSeekerID uuid.UUID) (int, error)
	EffectiveConfig(ctx context.Context, proID uuid.UUID) (cost int, enabled bool, err error)
}

type service struct {
	store    Store
	credits  ledger.Service
	insertFn notification.InsertTxFunc
	defaults config.BoostConfig
	log      *slog.Logger
}

func NewService(store Store, credits ledger.Service, insertFn notification.InsertTxFunc, defaults config.BoostConfig, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, credits: credits, insertFn: insertFn, defaults: defaults, log: log}
}

var _ Service = (*service)(nil)

// EffectiveConfig resolves the boost cost and enablement for a pro:
// per-pro row, else global row, else platform defaults.
func (s *service) EffectiveConfig(ctx context.Context, proID uuid.UUID) (int, bool, error) {
	c, err := s.store.EffectiveConfig(ctx, proID)
	if err != nil {
		return 0, false, err
	}
	if c == nil {
		return s.defaults.DefaultCost, s.defaults.DefaultEnabled, nil
	}
	return c.Cost, c.Enabled, nil
}

// UseBoost spends credits to surface the pro at the top of one seeker's
// deck. Debit, boost record, ledger entry and the seeker's notification
// share one transaction; the conditional debit makes concurrent boosts
// safe without locking.
func (s *service) UseBoost(ctx context.Context, pro *models.User, targetSeekerID uuid.UUID) (int, error) {
	if pro.Role != models.RoleProfessional {
		return 0, ErrNotAPro
	}
	if pro.IsGhost() {
		return 0, ErrGhostPro
	}

	cost, enabled, err := s.EffectiveConfig(ctx, pro.ID)
	if err != nil {
		return 0, fmt.Errorf("resolve boost config: %w", err)
	}
	if !enabled {
		return 0, ErrBoostDisabled
	}

	exists, err := s.store.SeekerExists(ctx, targetSeekerID)
	if err != nil {
		return 0, fmt.Errorf("check seeker: %w", err)
	}
	if !exists {
		return 0, ErrTargetNotFound
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	action, err := s.store.InsertAction(ctx, tx, pro.ID, targetSeekerID, cost)
	if err != nil {
		return 0, fmt.Errorf("insert boost: %w", err)
	}
	balance, err := s.credits.Debit(ctx, tx, pro.ID, cost, models.CreditEntryBoostSpend, &action.ID)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return 0, err
		}
		return 0, fmt.Errorf("debit credits: %w", err)
	}

	data, _ := json.Marshal(map[string]string{"pro_id": pro.ID.String(), "boost_id": action.ID.String()})
	err = s.insertFn(ctx, tx, notification.SendArgs{
		UserID: targetSeekerID,
		NType:  models.NotifyBoost,
		Title:  "A professional wants your attention",
		Body:   fmt.Sprintf("%s boosted their profile to you.", pro.DisplayName),
		Data:   data,
	})
	if err != nil {
		return 0, fmt.Errorf("enqueue boost notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.log.Info("boost used", "pro_id", pro.ID, "target_seeker_id", targetSeekerID, "cost", cost, "credits_left", balance)
	return balance, nil
}
