package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/swipetonpro/backend/internal/admin"
	"github.com/swipetonpro/backend/internal/auth"
	"github.com/swipetonpro/backend/internal/boost"
	"github.com/swipetonpro/backend/internal/cache"
	"github.com/swipetonpro/backend/internal/chat"
	"github.com/swipetonpro/backend/internal/config"
	"github.com/swipetonpro/backend/internal/db"
	"github.com/swipetonpro/backend/internal/documents"
	"github.com/swipetonpro/backend/internal/ledger"
	"github.com/swipetonpro/backend/internal/notification"
	"github.com/swipetonpro/backend/internal/payment"
	"github.com/swipetonpro/backend/internal/router"
	"github.com/swipetonpro/backend/internal/storage"
	"github.com/swipetonpro/backend/internal/swipe"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("Unable to connect to PostgreSQL. Ensure Postgres is running, e.g. make dev-up", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("Connected to PostgreSQL")

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied")

	counts := cache.NewLikeCounts(cfg.Redis)
	defer counts.Close()
	if err := counts.Ping(ctx); err != nil {
		slog.Warn("Redis unreachable, like counters fall back to the database", "error", err)
	}

	blobs, err := storage.NewDiskStore(cfg.Storage.DocumentsDir)
	if err != nil {
		slog.Error("Failed to init document storage", "error", err)
		os.Exit(1)
	}

	// Notification insert func is set after the River client exists
	// (breaks the init cycle between services and the client).
	var insertMu sync.Mutex
	var insertFn notification.InsertTxFunc
	insertNotification := func(ctx context.Context, tx pgx.Tx, args notification.SendArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)

	notifRepo := notification.NewRepository(pool)

	swipeRepo := swipe.NewRepository(pool)
	swipeSvc := swipe.NewService(swipeRepo, counts, insertNotification, logger)

	boostRepo := boost.NewRepository(pool)
	boostSvc := boost.NewService(boostRepo, ledgerSvc, insertNotification, cfg.Boost, logger)

	var provider payment.Provider = payment.DevProvider{}
	if cfg.Payment.ProviderURL != "" {
		provider = payment.NewHTTPProvider(cfg.Payment.ProviderURL)
	}
	paymentRepo := payment.NewRepository(pool)
	paymentSvc := payment.NewService(paymentRepo, provider, ledgerSvc, insertNotification, cfg.Pricing, cfg.Payment, logger)

	chatRepo := chat.NewRepository(pool)
	chatSvc := chat.NewService(chatRepo, logger)

	docRepo := documents.NewRepository(pool)
	docSvc := documents.NewService(docRepo, blobs, logger)

	adminRepo := admin.NewRepository(pool)
	adminSvc := admin.NewService(adminRepo, docSvc, ledgerSvc, logger)

	workers := river.NewWorkers()
	river.AddWorker(workers, notification.NewSendWorker(notifRepo, logger))
	river.AddWorker(workers, payment.NewExpireWorker(paymentSvc, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.Payment.CheckoutTTL/2),
				func() (river.JobArgs, *river.InsertOpts) {
					return payment.ExpireArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args notification.SendArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	handlers := router.Handlers{
		Auth:         auth.NewHandler(authSvc, logger),
		Swipe:        swipe.NewHandler(swipeSvc, logger),
		Boost:        boost.NewHandler(boostSvc, logger),
		Payment:      payment.NewHandler(paymentSvc, ledgerSvc, logger),
		Chat:         chat.NewHandler(chatSvc, logger),
		Documents:    documents.NewHandler(docSvc, logger),
		Notification: notification.NewHandler(notifRepo, logger),
		Admin:        admin.NewHandler(adminSvc, logger),
	}
	api := router.New(handlers, authSvc, authRepo)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(api)

	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River shutdown failed", "error", err)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
