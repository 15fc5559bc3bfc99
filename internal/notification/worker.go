package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// SendArgs is the river job enqueued whenever the platform wants to notify
// a user. Producers enqueue it with InsertTx inside their own business
// transaction so a rolled-back boost or unlock never notifies anyone.
type SendArgs struct {
	UserID uuid.UUID       `json:"user_id"`
	NType  string          `json:"ntype"`
	Title  string          `json:"title"`
	Body   string          `json:"body,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (SendArgs) Kind() string { return "send_notification" }

// InsertTxFunc enqueues a SendArgs job within the given transaction.
// Provided by main using river.Client.InsertTx.
type InsertTxFunc func(ctx context.Context, tx pgx.Tx, args SendArgs) error

// SendWorker delivers a notification by persisting it to the user's inbox.
// Push channels (websocket, email) would hang off this same worker; the
// inbox row is the durable baseline delivery.
type SendWorker struct {
	river.WorkerDefaults[SendArgs]
	repo *Repository
	log  *slog.Logger
}

func NewSendWorker(repo *Repository, log *slog.Logger) *SendWorker {
	if log == nil {
		log = slog.Default()
	}
	return &SendWorker{repo: repo, log: log}
}

func (w *SendWorker) Work(ctx context.Context, job *river.Job[SendArgs]) error {
	args := job.Args
	n, err := w.repo.Insert(ctx, args.UserID, args.NType, args.Title, args.Body, args.Data)
	if err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	w.log.Info("notification delivered", "notification_id", n.ID, "user_id", args.UserID, "ntype", args.NType)
	return nil
}
