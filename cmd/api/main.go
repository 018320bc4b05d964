package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/auth"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/cache"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	loandomain "github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/http/handlers"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/observability"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/repository/memory"
	postgresrepo "github.com/hunterportola/underwriter-portal-fullstack/internal/repository/postgres"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/server"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/ws"
)

type stores struct {
	apps    application.Repository
	loans   loandomain.Repository
	users   auth.Repository
	pingers map[string]handlers.Pinger
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer st.close()

	apps := st.apps
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("redis unavailable, serving without cache", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			apps = cache.NewApplicationRepository(apps, client, cfg.CacheTTL, logger)
			st.pingers["cache"] = handlers.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		}
	}

	metrics := observability.NewMetrics()
	hub := ws.NewHub()
	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(st.users, jwtManager, cfg.UnderwriterEmails, cfg.JWTAccessTTL)
	underwritingService := underwriting.NewService(apps, st.loans,
		underwriting.WithPublisher(hub),
		underwriting.WithRecorder(metrics),
		underwriting.WithLogger(logger.Named("underwriting")),
	)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pingers:            st.pingers,
		AuthHandler:        handlers.NewAuthHandler(authService, auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}, logger),
		ApplicationHandler: handlers.NewApplicationHandler(underwritingService),
		LoanHandler:        handlers.NewLoanHandler(loandomain.NewService(st.loans)),
		WSHandler:          ws.NewHandler(hub, logger),
		JWTManager:         jwtManager,
		Metrics:            metrics,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", zap.String("addr", cfg.Addr()), zap.String("store", cfg.StoreDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory stores; data is lost on restart")
		ready := handlers.PingFunc(func(context.Context) error { return nil })
		return &stores{
			apps:    memory.NewApplicationRepository(),
			loans:   memory.NewLoanRepository(),
			users:   memory.NewUserRepository(),
			pingers: map[string]handlers.Pinger{"applications": ready, "loans": ready},
			close:   func() {},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.ApplicationsDatabaseURL, db.SchemaApplications, logger); err != nil {
			return nil, err
		}
		if err := db.Migrate(cfg.LoansDatabaseURL, db.SchemaLoans, logger); err != nil {
			return nil, err
		}
	}

	appsPool, err := db.NewPostgresPool(ctx, cfg, cfg.ApplicationsDatabaseURL, "applications")
	if err != nil {
		return nil, err
	}
	var loansPool *pgxpool.Pool
	if cfg.LoansDatabaseURL == cfg.ApplicationsDatabaseURL {
		loansPool = appsPool
	} else if loansPool, err = db.NewPostgresPool(ctx, cfg, cfg.LoansDatabaseURL, "loans"); err != nil {
		appsPool.Close()
		return nil, err
	}

	return &stores{
		apps:    postgresrepo.NewApplicationRepository(appsPool),
		loans:   postgresrepo.NewLoanRepository(loansPool),
		users:   db.NewUserRepository(appsPool),
		pingers: map[string]handlers.Pinger{"applications": appsPool, "loans": loansPool},
		close: func() {
			appsPool.Close()
			if loansPool != appsPool {
				loansPool.Close()
			}
		},
	}, nil
}
