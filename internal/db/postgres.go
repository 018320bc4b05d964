package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
)

const defaultConnLifetime = 30 * time.Minute

// NewPostgresPool opens a pool for one of the two stores. Both stores share
// the pool sizing settings; name is reported as application_name.
func NewPostgresPool(ctx context.Context, cfg config.Config, databaseURL, name string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s database url: %w", name, err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = defaultConnLifetime
	if d, err := time.ParseDuration(cfg.DBMaxConnLifetime); err == nil && d > 0 {
		poolCfg.MaxConnLifetime = d
	}
	if name != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = "underwriter-" + name
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", name, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s database: %w", name, err)
	}
	return pool, nil
}
