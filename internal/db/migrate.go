package db

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema names one of the two stores.
type Schema string

const (
	SchemaApplications Schema = "applications"
	SchemaLoans        Schema = "loans"
)

// Migrator applies the embedded migrations of one store.
type Migrator struct {
	migrate *migrate.Migrate
	schema  Schema
	logger  *zap.Logger
}

func NewMigrator(databaseURL string, schema Schema, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+string(schema))
	if err != nil {
		return nil, fmt.Errorf("open %s migrations: %w", schema, err)
	}
	target, err := migrateURL(databaseURL, schema)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, target)
	if err != nil {
		return nil, fmt.Errorf("create %s migrator: %w", schema, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{migrate: m, schema: schema, logger: logger}, nil
}

func (m *Migrator) Up() error {
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("no migrations to apply", zap.String("schema", string(m.schema)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s migration up: %w", m.schema, err)
	}
	version, dirty, err := m.migrate.Version()
	if err != nil {
		return fmt.Errorf("%s migration version: %w", m.schema, err)
	}
	m.logger.Info("migrations applied",
		zap.String("schema", string(m.schema)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

func (m *Migrator) Down() error {
	err := m.migrate.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s migration down: %w", m.schema, err)
	}
	m.logger.Info("migrations rolled back", zap.String("schema", string(m.schema)))
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate runs every pending migration of schema against databaseURL.
func Migrate(databaseURL string, schema Schema, logger *zap.Logger) error {
	m, err := NewMigrator(databaseURL, schema, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// migrateURL switches a postgres URL to the pgx5 driver scheme. Each store
// keeps its own version table so both may share one database in development.
func migrateURL(databaseURL string, schema Schema) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql", "pgx5":
		u.Scheme = "pgx5"
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("x-migrations-table", "schema_migrations_"+string(schema))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
