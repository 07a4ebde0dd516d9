package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"crypto-insight/internal/bot"
	"crypto-insight/internal/cache"
	"crypto-insight/internal/config"
	"crypto-insight/internal/domain"
	"crypto-insight/internal/job"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func testConfig() *config.Config {
	chains := make(map[domain.Operation][]string, len(config.DefaultChains))
	for op, names := range config.DefaultChains {
		chains[op] = append([]string(nil), names...)
	}
	return &config.Config{
		HTTPPort:         8080,
		CacheBackend:     "memory",
		Chains:           chains,
		ThrottleInterval: time.Millisecond,
		RequestTimeout:   time.Second,
		RetryMaxAttempts: 1,
		RetryMultiplier:  2,
		CacheWarmEnabled: true,
	}
}

type bootstrap struct {
	router   *gin.Engine
	warmed   bool
	botToken string
	exitCode int
}

func stubServerDeps(t *testing.T, cfg *config.Config) *bootstrap {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origStartWarmer := startWarmerFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc
	origExit := exitFunc

	b := &bootstrap{exitCode: -1}

	loadEnvFunc = func(...string) error { return errors.New("no .env") }
	loadConfigFunc = func() *config.Config { return cfg }
	initPostgresFunc = func(context.Context) (*pgxpool.Pool, error) { return nil, errors.New("postgres down") }
	initRedisFunc = func(context.Context) (*redis.Client, error) { return nil, errors.New("redis down") }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	startWarmerFunc = func(*job.CacheWarmer, context.Context) { b.warmed = true }
	startTelegramBotFunc = func(token string, _ bot.SnapshotSource, _ bot.Analyzer) { b.botToken = token }
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine {
		b.router = gin.New()
		return b.router
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }
	exitFunc = func(code int) { b.exitCode = code }

	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		startWarmerFunc = origStartWarmer
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
		exitFunc = origExit
	})
	return b
}

func TestMainBootstrap(t *testing.T) {
	cfg := testConfig()
	cfg.TelegramBotToken = "token"
	b := stubServerDeps(t, cfg)

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}

	if b.exitCode != -1 {
		t.Fatalf("expected clean exit, got code %d", b.exitCode)
	}
	if !b.warmed {
		t.Fatal("expected cache warmer to start")
	}
	if b.botToken != "token" {
		t.Fatalf("expected bot to receive token, got %q", b.botToken)
	}

	routes := map[string]bool{}
	for _, r := range b.router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /api/v1/crypto/snapshot/:symbol",
		"GET /api/v1/crypto/analysis/:symbol",
		"POST /api/v1/admin/refresh/:symbol",
		"GET /swagger/*any",
	} {
		if !routes[want] {
			t.Errorf("missing route %s", want)
		}
	}
}

func TestRunDegradesWhenBackendsAreDown(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = "redis"
	cfg.RedisURL = "localhost:1"
	cfg.DatabaseURL = "postgres://localhost:1/none"
	cfg.CacheWarmEnabled = false
	b := stubServerDeps(t, cfg)

	if err := run(); err != nil {
		t.Fatalf("run should survive missing backends: %v", err)
	}
	if b.warmed {
		t.Fatal("cache warmer should be disabled")
	}
}

func TestRunFailsWithoutUsableChains(t *testing.T) {
	cfg := testConfig()
	cfg.Chains[domain.OpTeam] = []string{config.ProviderMobula}
	stubServerDeps(t, cfg)

	if err := run(); err == nil {
		t.Fatal("expected error for an operation without providers")
	}
}

func TestMainExitsOnRunError(t *testing.T) {
	b := stubServerDeps(t, testConfig())
	initTracerFunc = func(context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		return nil, nil, errors.New("collector unreachable")
	}

	main()
	if b.exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", b.exitCode)
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	stubServerDeps(t, testConfig())
	startHTTPServerFunc = func(*http.Server) error { return errors.New("address in use") }
	never := make(chan struct{})
	t.Cleanup(func() { close(never) })
	waitForSignalFunc = func(<-chan os.Signal) { <-never }

	if err := run(); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestBuildCache(t *testing.T) {
	stubServerDeps(t, testConfig())

	cfg := testConfig()
	store, expiring, client := buildCache(context.Background(), cfg, cache.DefaultTTLs())
	if _, ok := store.(*cache.MemoryCache); !ok || expiring == nil || client != nil {
		t.Fatalf("expected memory cache, got %T", store)
	}

	cfg.CacheBackend = "redis"
	store, expiring, client = buildCache(context.Background(), cfg, cache.DefaultTTLs())
	if _, ok := store.(*cache.MemoryCache); !ok || expiring == nil || client != nil {
		t.Fatalf("expected memory fallback when redis is down, got %T", store)
	}

	initRedisFunc = func(context.Context) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{Addr: "localhost:1"}), nil
	}
	store, expiring, client = buildCache(context.Background(), cfg, cache.DefaultTTLs())
	if _, ok := store.(*cache.RedisCache); !ok || expiring != nil || client == nil {
		t.Fatalf("expected redis cache, got %T", store)
	}
	client.Close()
}
