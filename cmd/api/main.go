package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/homevet/intake-platform/internal/api/router"
	"github.com/homevet/intake-platform/internal/catalog"
	appconfig "github.com/homevet/intake-platform/internal/config"
	"github.com/homevet/intake-platform/internal/http/handlers"
	"github.com/homevet/intake-platform/internal/notify"
	"github.com/homevet/intake-platform/internal/observability/metrics"
	"github.com/homevet/intake-platform/internal/requests"
	"github.com/homevet/intake-platform/internal/session"
	"github.com/homevet/intake-platform/internal/vetdata"
	"github.com/homevet/intake-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting intake-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.VetDataBaseURL == "" {
		logger.Error("VETDATA_BASE_URL is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	vetClient := vetdata.NewClient(cfg.VetDataBaseURL, cfg.VetDataAPIKey, logger)

	redisClient := buildRedisClient(cfg, logger)
	var sessions *session.Store
	if redisClient != nil {
		sessions = session.NewStore(redisClient, cfg.SessionTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	requestsRepo := requests.NewRepository(pool)

	// The catalog cache rides on a second connection through database/sql;
	// the cache is optional, so a failure here degrades to live lookups.
	var catalogRepo *catalog.Repository
	if db, err := sql.Open("postgres", cfg.DatabaseURL); err != nil {
		logger.Warn("catalog cache unavailable, using live lookups", "error", err)
	} else {
		defer func() { _ = db.Close() }()
		catalogRepo = catalog.NewRepository(db)
	}
	catalogSvc := catalog.NewService(catalogRepo, vetClient, logger)

	var emailSender notify.EmailSender
	if s := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); s != nil {
		emailSender = s
	}
	notifier := notify.NewFollowUpNotifier(emailSender, notify.FollowUpConfig{
		NotificationEmail: cfg.FollowUpEmail,
	}, logger)

	intakeMetrics := metrics.NewIntakeMetrics(nil)

	routerCfg := &router.Config{
		Logger:             logger,
		Catalog:            handlers.NewCatalogHandler(catalogSvc, cfg.PracticeID, logger),
		Zone:               handlers.NewZoneHandler(vetClient, sessions, cfg.ZoneCheckQuietPeriod, intakeMetrics, logger),
		Slots:              handlers.NewSlotHandler(vetClient, sessions, cfg.PracticeID, intakeMetrics, logger),
		Providers:          handlers.NewProvidersHandler(vetClient, sessions, cfg.PracticeID, logger),
		Submission:         handlers.NewSubmissionHandler(requestsRepo, notifier, sessions, intakeMetrics, logger),
		AccountAuthSecret:  cfg.AccountJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: float64(cfg.RateLimitPerSecond),
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	if catalogRepo != nil && cfg.CatalogRefreshInterval > 0 {
		go refreshCatalog(ctx, catalogSvc, cfg.PracticeID, cfg.CatalogRefreshInterval, logger)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildRedisClient connects to Redis, returning nil when it is unreachable.
// The session cache is a soft dependency: without it zone results and slot
// offers resolve fresh on every request.
func buildRedisClient(cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, session cache disabled", "error", err, "addr", cfg.RedisAddr)
		_ = client.Close()
		return nil
	}
	return client
}

// refreshCatalog re-warms the species cache on a fixed interval so dropdowns
// keep serving from the local tables between backend syncs.
func refreshCatalog(ctx context.Context, svc *catalog.Service, practiceID string, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.RefreshSpecies(ctx, practiceID); err != nil {
				logger.Warn("catalog refresh failed", "error", err)
			}
		}
	}
}
