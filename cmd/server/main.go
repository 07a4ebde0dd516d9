package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-insight/internal/advisor"
	"crypto-insight/internal/bot"
	"crypto-insight/internal/cache"
	"crypto-insight/internal/config"
	"crypto-insight/internal/db"
	"crypto-insight/internal/handler"
	"crypto-insight/internal/job"
	"crypto-insight/internal/logger"
	"crypto-insight/internal/provider"
	"crypto-insight/internal/repository"
	"crypto-insight/internal/service"
	"crypto-insight/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "crypto-insight/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newProvidersFunc     = provider.NewFromConfig
	newLLMClientFunc     = advisor.NewOpenAIClient
	startWarmerFunc      = func(w *job.CacheWarmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc = func(token string, market bot.SnapshotSource, insight bot.Analyzer) {
		bot.StartTelegramBot(token, market, insight)
	}
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           Crypto Insight API
// @version         1.0
// @description     Multi-provider crypto market data with cached fallback and LLM analysis.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := run(); err != nil {
		logger.WithComponent("server").WithError(err).Error("server failed")
		exitFunc(1)
	}
}

func run() error {
	log := logger.WithComponent("server")

	if err := loadEnvFunc(); err != nil {
		log.Debug("no .env file loaded")
	}
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	ttls := cache.TTLs{
		cache.CategoryMarketData: cfg.TTLMarketData,
		cache.CategoryDetails:    cfg.TTLDetails,
		cache.CategoryNews:       cfg.TTLNews,
		cache.CategoryTeam:       cfg.TTLTeam,
		cache.CategoryDefault:    cfg.TTLDefault,
	}
	store, expiring, redisClient := buildCache(ctx, cfg, ttls)
	if redisClient != nil {
		defer redisClient.Close()
	}

	chains, err := provider.ResolveChains(cfg.Chains, newProvidersFunc(tracer, cfg))
	if err != nil {
		return fmt.Errorf("resolve provider chains: %w", err)
	}
	retry := provider.NewRetryPolicy(cfg.RetryMaxAttempts, cfg.RetryInitialDelay, cfg.RetryMultiplier, cfg.RetryMaxDelay, cfg.RetryStatusCodes)
	market, err := service.NewMarketService(tracer, chains, store, provider.NewThrottle(cfg.ThrottleInterval), retry, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("build market service: %w", err)
	}

	var analyst service.AnalysisGenerator
	if cfg.OpenAIAPIKey != "" {
		analyst = advisor.NewAnalyst(tracer, newLLMClientFunc(cfg.OpenAIAPIKey), cfg.OpenAIModel, cfg.AnalysisConcurrency)
	}

	var archive service.AnalysisArchive
	pool := connectPostgres(ctx, cfg)
	if pool != nil {
		defer pool.Close()
		repo := repository.NewAnalysisRepository(pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		archive = repo
	}

	insight := service.NewInsightService(tracer, market, advisor.NewFormatter(), analyst, archive)

	if cfg.CacheWarmEnabled {
		warmer := job.NewCacheWarmer(tracer, market, expiring, cfg.CacheWarmIntervalSecs, cfg.CacheWarmBatchSize)
		startWarmerFunc(warmer, ctx)
	}

	startTelegramBotFunc(cfg.TelegramBotToken, market, insight)

	h := handler.New(tracer, market, insight, cfg.AdminAPIKey)
	if redisClient != nil {
		h.AddHealthCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	if pool != nil {
		h.AddHealthCheck("postgres", pool.Ping)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-insight"))
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		serveErr <- startHTTPServerFunc(srv)
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	signalled := make(chan struct{})
	go func() {
		waitForSignalFunc(quit)
		close(signalled)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-signalled:
	}
	log.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

// buildCache picks the configured backend. A Redis backend that cannot be
// reached falls back to the in-process cache. The returned ExpiringCache is
// nil unless the in-process cache is used.
func buildCache(ctx context.Context, cfg *config.Config, ttls cache.TTLs) (cache.Cache, job.ExpiringCache, *redis.Client) {
	log := logger.WithComponent("server")

	if cfg.CacheBackend == "redis" {
		os.Setenv("REDIS_URL", cfg.RedisURL)
		client, err := initRedisFunc(ctx)
		if err == nil {
			return cache.NewRedisCache(client, ttls), nil, client
		}
		log.WithError(err).Warn("redis unavailable, falling back to in-memory cache")
	}

	mem := cache.NewMemoryCache(ttls)
	return mem, mem, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		return nil
	}
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	pool, err := initPostgresFunc(ctx)
	if err != nil {
		logger.WithComponent("server").WithError(err).Warn("postgres unavailable, analysis archive disabled")
		return nil
	}
	return pool
}
