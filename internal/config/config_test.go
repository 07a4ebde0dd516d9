package config

import (
	"reflect"
	"testing"
	"time"

	"crypto-insight/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"HTTP_PORT", "REDIS_URL", "CACHE_BACKEND", "COINGECKO_BASE_URL",
		"API_RATE_LIMIT_MS", "API_TIMEOUT_SECS", "RETRY_MAX_ATTEMPTS", "RETRY_MULTIPLIER",
		"RETRY_STATUS_CODES", "CACHE_TTL_TEAM_MINS", "PROVIDER_CHAIN_SNAPSHOT", "OPENAI_MODEL",
		"CACHE_WARM_ENABLED",
	} {
		t.Setenv(name, "")
	}

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.CacheBackend != "memory" {
		t.Fatalf("expected memory cache backend, got %s", cfg.CacheBackend)
	}
	if cfg.CoinGeckoBaseURL != DefaultCoinGeckoURL {
		t.Fatalf("unexpected coingecko url %s", cfg.CoinGeckoBaseURL)
	}
	if cfg.ThrottleInterval != 200*time.Millisecond || cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected throttle/timeout: %v %v", cfg.ThrottleInterval, cfg.RequestTimeout)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryInitialDelay != time.Second || cfg.RetryMultiplier != 2.0 || cfg.RetryMaxDelay != 10*time.Second {
		t.Fatalf("unexpected retry config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.RetryStatusCodes, []int{429, 500, 502, 503, 504}) {
		t.Fatalf("unexpected retry codes %v", cfg.RetryStatusCodes)
	}
	if cfg.TTLMarketData != 5*time.Minute || cfg.TTLDefault != 15*time.Minute || cfg.TTLNews != 10*time.Minute ||
		cfg.TTLDetails != 2*time.Hour || cfg.TTLTeam != 24*time.Hour {
		t.Fatalf("unexpected TTLs: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Chains[domain.OpSnapshot], DefaultChains[domain.OpSnapshot]) {
		t.Fatalf("unexpected snapshot chain %v", cfg.Chains[domain.OpSnapshot])
	}
	for _, op := range domain.Operations {
		if len(cfg.Chains[op]) == 0 {
			t.Fatalf("operation %s has an empty chain", op)
		}
	}
	if !cfg.CacheWarmEnabled {
		t.Fatal("expected cache warmer enabled by default")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "REDIS")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("COINGECKO_BASE_URL", "http://localhost:9999/api/v3/")
	t.Setenv("API_RATE_LIMIT_MS", "1000")
	t.Setenv("RETRY_MULTIPLIER", "1.5")
	t.Setenv("RETRY_STATUS_CODES", "429, 503")
	t.Setenv("CACHE_TTL_TEAM_MINS", "60")
	t.Setenv("CACHE_WARM_ENABLED", "false")

	cfg := Load()
	if cfg.HTTPPort != 9090 || cfg.CacheBackend != "redis" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CoinGeckoBaseURL != "http://localhost:9999/api/v3" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.CoinGeckoBaseURL)
	}
	if cfg.ThrottleInterval != time.Second {
		t.Fatalf("expected 1s throttle, got %v", cfg.ThrottleInterval)
	}
	if cfg.RetryMultiplier != 1.5 {
		t.Fatalf("expected multiplier 1.5, got %v", cfg.RetryMultiplier)
	}
	if !reflect.DeepEqual(cfg.RetryStatusCodes, []int{429, 503}) {
		t.Fatalf("unexpected retry codes %v", cfg.RetryStatusCodes)
	}
	if cfg.TTLTeam != time.Hour {
		t.Fatalf("expected 1h team ttl, got %v", cfg.TTLTeam)
	}
	if cfg.CacheWarmEnabled {
		t.Fatal("expected cache warmer disabled")
	}

	t.Setenv("API_RATE_LIMIT_MS", "bad")
	t.Setenv("CACHE_BACKEND", "memcached")
	t.Setenv("COINGECKO_BASE_URL", "ftp://nope")
	cfg = Load()
	if cfg.ThrottleInterval != 200*time.Millisecond {
		t.Fatalf("invalid throttle should fall back to default, got %v", cfg.ThrottleInterval)
	}
	if cfg.CacheBackend != "memory" {
		t.Fatalf("unsupported backend should fall back to memory, got %s", cfg.CacheBackend)
	}
	if cfg.CoinGeckoBaseURL != DefaultCoinGeckoURL {
		t.Fatalf("invalid url should fall back to default, got %s", cfg.CoinGeckoBaseURL)
	}
}

func TestChainOverride(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "reorder", value: "coingecko, cryptocompare", want: []string{"coingecko", "cryptocompare"}},
		{name: "drops unknown and duplicates", value: "binance,coingecko,COINGECKO", want: []string{"coingecko"}},
		{name: "all unknown uses default", value: "binance,kraken", want: DefaultChains[domain.OpSnapshot]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROVIDER_CHAIN_SNAPSHOT", tt.value)
			got := Load().Chains[domain.OpSnapshot]
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chain = %v, want %v", got, tt.want)
			}
		})
	}
}
