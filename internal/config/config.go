package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"
)

const (
	DefaultCryptoCompareURL = "https://min-api.cryptocompare.com/data"
	DefaultCoinGeckoURL     = "https://api.coingecko.com/api/v3"
	DefaultMobulaURL        = "https://api.mobula.io/api/1"
	DefaultCoinPaprikaURL   = "https://api.coinpaprika.com/v1"
	DefaultNewsFeedURL      = "https://www.coindesk.com/arc/outboundfeeds/rss/"
)

// Provider names accepted in PROVIDER_CHAIN_* overrides.
const (
	ProviderCryptoCompare = "cryptocompare"
	ProviderCoinGecko     = "coingecko"
	ProviderMobula        = "mobula"
	ProviderCoinPaprika   = "coinpaprika"
	ProviderRSS           = "rss"
)

// DefaultChains is the provider priority per operation.
var DefaultChains = map[domain.Operation][]string{
	domain.OpSnapshot: {ProviderCryptoCompare, ProviderCoinGecko, ProviderMobula},
	domain.OpList:     {ProviderCryptoCompare, ProviderCoinGecko, ProviderMobula},
	domain.OpDetails:  {ProviderCoinGecko, ProviderMobula},
	domain.OpTeam:     {ProviderCoinPaprika},
	domain.OpNews:     {ProviderCryptoCompare, ProviderRSS},
	domain.OpSeries:   {ProviderCryptoCompare, ProviderCoinGecko},
}

type Config struct {
	HTTPPort    int
	AdminAPIKey string

	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	CacheBackend     string

	CryptoCompareBaseURL string
	CryptoCompareAPIKey  string
	CoinGeckoBaseURL     string
	CoinGeckoAPIKey      string
	MobulaBaseURL        string
	MobulaAPIKey         string
	CoinPaprikaBaseURL   string
	NewsFeedURL          string

	Chains map[domain.Operation][]string

	ThrottleInterval time.Duration
	RequestTimeout   time.Duration

	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMultiplier   float64
	RetryMaxDelay     time.Duration
	RetryStatusCodes  []int

	TTLMarketData time.Duration
	TTLDefault    time.Duration
	TTLNews       time.Duration
	TTLDetails    time.Duration
	TTLTeam       time.Duration

	OpenAIAPIKey        string
	OpenAIModel         string
	AnalysisConcurrency int

	CacheWarmEnabled      bool
	CacheWarmIntervalSecs int
	CacheWarmBatchSize    int
}

func Load() *Config {
	log := logger.WithComponent("config")

	cfg := &Config{
		AdminAPIKey:         strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		TelegramBotToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		CryptoCompareAPIKey: strings.TrimSpace(os.Getenv("CRYPTOCOMPARE_API_KEY")),
		CoinGeckoAPIKey:     strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		MobulaAPIKey:        strings.TrimSpace(os.Getenv("MOBULA_API_KEY")),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	cfg.HTTPPort = intFromEnv("HTTP_PORT", 8080)

	if cfg.TelegramBotToken == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, analysis archive disabled")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		log.Warnf("unsupported CACHE_BACKEND=%q, defaulting to memory", cfg.CacheBackend)
		cfg.CacheBackend = "memory"
	}

	cfg.CryptoCompareBaseURL = urlFromEnv("CRYPTOCOMPARE_BASE_URL", DefaultCryptoCompareURL)
	cfg.CoinGeckoBaseURL = urlFromEnv("COINGECKO_BASE_URL", DefaultCoinGeckoURL)
	cfg.MobulaBaseURL = urlFromEnv("MOBULA_BASE_URL", DefaultMobulaURL)
	cfg.CoinPaprikaBaseURL = urlFromEnv("COINPAPRIKA_BASE_URL", DefaultCoinPaprikaURL)
	cfg.NewsFeedURL = urlFromEnv("NEWS_FEED_URL", DefaultNewsFeedURL)

	if cfg.CryptoCompareAPIKey == "" {
		log.Warn("CRYPTOCOMPARE_API_KEY not set, CryptoCompare requests will be anonymous and heavily rate limited")
	}
	if cfg.MobulaAPIKey == "" {
		log.Warn("MOBULA_API_KEY not set, Mobula fallback will likely be rejected")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, analysis generation disabled")
	}

	cfg.Chains = make(map[domain.Operation][]string, len(DefaultChains))
	for _, op := range domain.Operations {
		cfg.Chains[op] = chainFromEnv(op)
	}

	cfg.ThrottleInterval = time.Duration(intFromEnv("API_RATE_LIMIT_MS", 200)) * time.Millisecond
	cfg.RequestTimeout = time.Duration(intFromEnv("API_TIMEOUT_SECS", 15)) * time.Second

	cfg.RetryMaxAttempts = intFromEnv("RETRY_MAX_ATTEMPTS", 3)
	cfg.RetryInitialDelay = time.Duration(intFromEnv("RETRY_INITIAL_DELAY_MS", 1000)) * time.Millisecond
	cfg.RetryMaxDelay = time.Duration(intFromEnv("RETRY_MAX_DELAY_MS", 10000)) * time.Millisecond
	cfg.RetryMultiplier = 2.0
	if v := strings.TrimSpace(os.Getenv("RETRY_MULTIPLIER")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 1 {
			cfg.RetryMultiplier = f
		} else {
			log.Warnf("invalid RETRY_MULTIPLIER=%q, defaulting to 2.0", v)
		}
	}
	if cfg.RetryMaxDelay < cfg.RetryInitialDelay {
		log.Warn("RETRY_MAX_DELAY_MS below RETRY_INITIAL_DELAY_MS, clamping")
		cfg.RetryMaxDelay = cfg.RetryInitialDelay
	}
	cfg.RetryStatusCodes = statusCodesFromEnv("RETRY_STATUS_CODES", []int{429, 500, 502, 503, 504})

	cfg.TTLMarketData = time.Duration(intFromEnv("CACHE_TTL_MARKET_DATA_MINS", 5)) * time.Minute
	cfg.TTLDefault = time.Duration(intFromEnv("CACHE_TTL_DEFAULT_MINS", 15)) * time.Minute
	cfg.TTLNews = time.Duration(intFromEnv("CACHE_TTL_NEWS_MINS", 10)) * time.Minute
	cfg.TTLDetails = time.Duration(intFromEnv("CACHE_TTL_DETAILS_MINS", 120)) * time.Minute
	cfg.TTLTeam = time.Duration(intFromEnv("CACHE_TTL_TEAM_MINS", 1440)) * time.Minute

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	cfg.AnalysisConcurrency = intFromEnv("ANALYSIS_CONCURRENCY", 3)

	cfg.CacheWarmEnabled = true
	if v := strings.TrimSpace(os.Getenv("CACHE_WARM_ENABLED")); v != "" {
		cfg.CacheWarmEnabled = strings.EqualFold(v, "true")
	}
	cfg.CacheWarmIntervalSecs = intFromEnv("CACHE_WARM_INTERVAL_SECS", 60)
	cfg.CacheWarmBatchSize = intFromEnv("CACHE_WARM_BATCH_SIZE", 3)

	return cfg
}

func intFromEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.WithComponent("config").Warnf("invalid %s=%q, defaulting to %d", name, v, fallback)
		return fallback
	}
	return n
}

func urlFromEnv(name, fallback string) string {
	v := strings.TrimRight(strings.TrimSpace(os.Getenv(name)), "/")
	if v == "" {
		return fallback
	}
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		logger.WithComponent("config").Warnf("invalid %s=%q, defaulting to %s", name, v, fallback)
		return fallback
	}
	return v
}

func statusCodesFromEnv(name string, fallback []int) []int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	var codes []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 100 || n > 599 {
			logger.WithComponent("config").Warnf("ignoring invalid status code %q in %s", part, name)
			continue
		}
		codes = append(codes, n)
	}
	if len(codes) == 0 {
		return fallback
	}
	return codes
}

// chainFromEnv reads PROVIDER_CHAIN_<OP>. Unknown providers are dropped and an
// empty result falls back to the default order.
func chainFromEnv(op domain.Operation) []string {
	name := "PROVIDER_CHAIN_" + strings.ToUpper(string(op))
	def := append([]string(nil), DefaultChains[op]...)

	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}

	var chain []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(v, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" || seen[p] {
			continue
		}
		if !knownProvider(p) {
			logger.WithComponent("config").Warnf("ignoring unknown provider %q in %s", p, name)
			continue
		}
		seen[p] = true
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		logger.WithComponent("config").Warnf("%s left no usable providers, using default order", name)
		return def
	}
	return chain
}

func knownProvider(name string) bool {
	switch name {
	case ProviderCryptoCompare, ProviderCoinGecko, ProviderMobula, ProviderCoinPaprika, ProviderRSS:
		return true
	}
	return false
}
