package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"crypto-insight/internal/advisor"
	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"

	tele "gopkg.in/telebot.v3"
)

const (
	requestTimeout = 60 * time.Second
	// Telegram rejects messages longer than 4096 characters.
	maxMessageLen = 4000
)

// SnapshotSource is the market surface the bot reads quotes from.
type SnapshotSource interface {
	Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
}

// Analyzer produces full analyses. It may be nil, which disables /analyze.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, days int) (*domain.AnalysisResponse, error)
}

var newBot = tele.NewBot

func StartTelegramBot(token string, market SnapshotSource, insight Analyzer) {
	log := logger.WithComponent("telegram")
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		log.WithError(err).Error("failed to create Telegram bot")
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		return c.Send(quoteReply(market, c.Args(), "price", formatPrice))
	})

	b.Handle("/volume", func(c tele.Context) error {
		return c.Send(quoteReply(market, c.Args(), "volume", formatVolume))
	})

	b.Handle("/change", func(c tele.Context) error {
		return c.Send(quoteReply(market, c.Args(), "change", formatChange))
	})

	b.Handle("/analyze", func(c tele.Context) error {
		if insight == nil {
			return c.Send("Analysis is not available right now.")
		}
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /analyze BTC [days]")
		}
		days := 30
		if len(args) > 1 {
			if _, err := fmt.Sscanf(args[1], "%d", &days); err != nil {
				return c.Send("days must be a number between 1 and 365")
			}
		}
		return c.Send(analyzeReply(insight, domain.NormalizeSymbol(args[0]), days))
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		symbols := advisor.ExtractSymbols(c.Text())
		if len(symbols) == 0 {
			return nil
		}
		return c.Send(quoteReply(market, symbols[:1], "price", formatPrice))
	})

	log.Info("Telegram bot started")
	go b.Start()
}

func usage(command, example string) string {
	return fmt.Sprintf("Usage: /%s %s\nSupported: %s", command, example, strings.Join(domain.KnownSymbols, ", "))
}

func quoteReply(market SnapshotSource, args []string, command string, render func(*domain.CryptoSnapshot) string) string {
	if len(args) == 0 {
		return usage(command, "BTC")
	}
	symbol := domain.NormalizeSymbol(args[0])
	if _, ok := domain.LookupAsset(symbol); !ok {
		return fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.KnownSymbols, ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	snapshot, err := market.Snapshot(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("Error fetching %s for %s: %v", command, symbol, err)
	}
	if snapshot == nil {
		return fmt.Sprintf("No market data available for %s right now.", symbol)
	}
	return render(snapshot)
}

func analyzeReply(insight Analyzer, symbol string, days int) string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*requestTimeout)
	defer cancel()

	resp, err := insight.Analyze(ctx, symbol, days)
	if err != nil {
		return fmt.Sprintf("Error analyzing %s: %v", symbol, err)
	}
	return formatAnalysis(resp)
}

func formatPrice(s *domain.CryptoSnapshot) string {
	return fmt.Sprintf("%s\nPrice: %s\n24h Change: %s\n24h Volume: %s",
		s.Symbol, money(s.Price, 2), percent(s.PercentChange24h), money(s.Volume24h, 0))
}

func formatVolume(s *domain.CryptoSnapshot) string {
	return fmt.Sprintf("%s 24h Trading Volume\nVolume: %s\nPrice: %s\n24h Change: %s",
		s.Symbol, money(s.Volume24h, 0), money(s.Price, 2), percent(s.PercentChange24h))
}

func formatChange(s *domain.CryptoSnapshot) string {
	trend := "flat"
	if c := s.PercentChange24h; c != nil {
		switch {
		case *c > 0:
			trend = "up"
		case *c < 0:
			trend = "down"
		}
	}
	return fmt.Sprintf("%s is %s %s over 24h\nPrice: %s",
		s.Symbol, trend, percent(s.PercentChange24h), money(s.Price, 2))
}

func formatAnalysis(r *domain.AnalysisResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s analysis over %d days\n", r.Symbol, r.Days)
	if r.Snapshot != nil {
		fmt.Fprintf(&b, "Price: %s (%s 24h)\n", money(r.Snapshot.Price, 2), percent(r.Snapshot.PercentChange24h))
	}
	fmt.Fprintf(&b, "Volatility: %.2f%%\nPeriod change: %.2f%%\n", r.Metrics.Volatility, r.Metrics.PriceChange)

	if len(r.Analysis) == 0 {
		return b.String()
	}
	categories := make([]string, 0, len(r.Analysis))
	for c := range r.Analysis {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", c, r.Analysis[c])
	}
	return truncate(b.String(), maxMessageLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func money(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.*f", decimals, *v)
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}
