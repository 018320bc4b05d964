// Command migrate applies or rolls back both store schemas.
//
//	migrate up
//	migrate down
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	targets := []struct {
		url    string
		schema db.Schema
	}{
		{cfg.ApplicationsDatabaseURL, db.SchemaApplications},
		{cfg.LoansDatabaseURL, db.SchemaLoans},
	}
	for _, t := range targets {
		if err := run(direction, t.url, t.schema, logger); err != nil {
			logger.Fatal("migration failed", zap.String("schema", string(t.schema)), zap.Error(err))
		}
	}
}

func run(direction, url string, schema db.Schema, logger *zap.Logger) error {
	m, err := db.NewMigrator(url, schema, logger)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	switch direction {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	}
	return fmt.Errorf("unknown direction %q (want up or down)", direction)
}
