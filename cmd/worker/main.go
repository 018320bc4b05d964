package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/jobs"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/notify"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/observability"
	postgresrepo "github.com/hunterportola/underwriter-portal-fullstack/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if cfg.StoreDriver != config.StoreDriverPostgres {
		logger.Fatal("worker requires STORE_DRIVER=postgres", zap.String("store", cfg.StoreDriver))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg, cfg.ApplicationsDatabaseURL, "worker")
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pool.Close()

	sender, err := notify.NewSenderFromConfig(ctx, cfg, logger.Named("sms"))
	if err != nil {
		logger.Fatal("failed to build sms sender", zap.Error(err))
	}

	worker := jobs.NewWorker(
		postgresrepo.NewOutboxRepository(pool),
		postgresrepo.NewApplicationRepository(pool),
		sender,
		logger.Named("outbox"),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started",
		zap.Duration("interval", cfg.WorkerPollInterval),
		zap.Int32("batch_size", cfg.WorkerBatchSize),
		zap.String("sms_mode", cfg.SMSMode))
	worker.Run(sigCtx, cfg.WorkerPollInterval, cfg.WorkerBatchSize)
	logger.Info("worker stopped")
}
