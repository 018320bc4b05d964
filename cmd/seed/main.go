// Command seed submits sample applications covering every income type.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/observability"
	postgresrepo "github.com/hunterportola/underwriter-portal-fullstack/internal/repository/postgres"
)

//go:embed applications.json
var fixtures []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	var subs []application.Submission
	if err := json.Unmarshal(fixtures, &subs); err != nil {
		logger.Fatal("decode fixtures", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appsPool, err := db.NewPostgresPool(ctx, cfg, cfg.ApplicationsDatabaseURL, "applications")
	if err != nil {
		logger.Fatal("failed to connect applications store", zap.Error(err))
	}
	defer appsPool.Close()
	loansPool, err := db.NewPostgresPool(ctx, cfg, cfg.LoansDatabaseURL, "loans")
	if err != nil {
		logger.Fatal("failed to connect loans store", zap.Error(err))
	}
	defer loansPool.Close()

	svc := underwriting.NewService(
		postgresrepo.NewApplicationRepository(appsPool),
		postgresrepo.NewLoanRepository(loansPool),
		underwriting.WithLogger(logger),
	)
	for i := range subs {
		id, err := svc.Submit(ctx, &subs[i], nil)
		if err != nil {
			logger.Fatal("submit sample application", zap.Int("index", i), zap.Error(err))
		}
		logger.Info("seeded application", zap.String("application_id", id))
	}
	logger.Info("seed complete", zap.Int("count", len(subs)))
}
