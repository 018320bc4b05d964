// Package cache keeps decided applications in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
)

const defaultTTL = 10 * time.Minute

// NewRedisClient connects to cfg.RedisAddr and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// ApplicationRepository decorates an application.Repository. Only approved
// and rejected applications are cached since they can no longer change;
// pending reads always go to the store.
type ApplicationRepository struct {
	inner  application.Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewApplicationRepository(inner application.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *ApplicationRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func applicationKey(id string) string {
	return "application:" + id
}

func (r *ApplicationRepository) Insert(ctx context.Context, app *application.Application) error {
	return r.inner.Insert(ctx, app)
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status application.Status, order application.SortOrder) ([]application.Application, error) {
	return r.inner.ListByStatus(ctx, status, order)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	key := applicationKey(id)
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var app application.Application
		if jsonErr := json.Unmarshal(data, &app); jsonErr == nil {
			return &app, nil
		}
		r.logger.Warn("dropping corrupt cache entry", zap.String("key", key))
		_ = r.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	app, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() {
		r.store(ctx, app)
	}
	return app, nil
}

func (r *ApplicationRepository) Decide(ctx context.Context, id string, expected application.Status, t application.Transition) error {
	err := r.inner.Decide(ctx, id, expected, t)
	if delErr := r.client.Del(ctx, applicationKey(id)).Err(); delErr != nil {
		r.logger.Warn("cache invalidation failed", zap.String("application_id", id), zap.Error(delErr))
	}
	return err
}

func (r *ApplicationRepository) store(ctx context.Context, app *application.Application) {
	data, err := json.Marshal(app)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("application_id", app.ID), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, applicationKey(app.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", zap.String("application_id", app.ID), zap.Error(err))
	}
}
