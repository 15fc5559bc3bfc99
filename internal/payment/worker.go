package payment

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// ExpireArgs is the periodic job that sweeps overdue pending checkout
// sessions. Scheduled by main; unique so only one sweep runs at a time.
type ExpireArgs struct{}

func (ExpireArgs) Kind() string { return "expire_checkout_sessions" }

func (ExpireArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

type ExpireWorker struct {
	river.WorkerDefaults[ExpireArgs]
	svc Service
	log *slog.Logger
}

func NewExpireWorker(svc Service, log *slog.Logger) *ExpireWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ExpireWorker{svc: svc, log: log}
}

func (w *ExpireWorker) Work(ctx context.Context, job *river.Job[ExpireArgs]) error {
	_, err := w.svc.ExpireSessions(ctx)
	return err
}
