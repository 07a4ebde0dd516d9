package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crypto-insight/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type stubSource struct {
	snapshot *domain.CryptoSnapshot
	err      error
	symbol   string
}

func (s *stubSource) Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	s.symbol = symbol
	return s.snapshot, s.err
}

type stubAnalyzer struct {
	resp *domain.AnalysisResponse
	err  error
	days int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, symbol string, days int) (*domain.AnalysisResponse, error) {
	a.days = days
	return a.resp, a.err
}

func btc() *domain.CryptoSnapshot {
	return &domain.CryptoSnapshot{
		Symbol:           "BTC",
		Price:            domain.Float(64000.5),
		Volume24h:        domain.Float(1234567),
		PercentChange24h: domain.Float(-2.345),
	}
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	called := false
	orig := newBot
	newBot = func(tele.Settings) (*tele.Bot, error) {
		called = true
		return nil, errors.New("unexpected")
	}
	t.Cleanup(func() { newBot = orig })

	StartTelegramBot("", nil, nil)
	if called {
		t.Fatal("bot should not be created without a token")
	}
}

func TestStartTelegramBotHandlesCreateError(t *testing.T) {
	orig := newBot
	newBot = func(tele.Settings) (*tele.Bot, error) { return nil, errors.New("bad token") }
	t.Cleanup(func() { newBot = orig })

	StartTelegramBot("token", &stubSource{}, nil)
}

func TestQuoteReply(t *testing.T) {
	src := &stubSource{snapshot: btc()}

	got := quoteReply(src, []string{"btc"}, "price", formatPrice)
	want := "BTC\nPrice: $64000.50\n24h Change: -2.35%\n24h Volume: $1234567"
	if got != want {
		t.Fatalf("unexpected reply:\n%s\nwant:\n%s", got, want)
	}
	if src.symbol != "BTC" {
		t.Fatalf("expected normalized symbol, got %q", src.symbol)
	}

	if got := quoteReply(src, nil, "volume", formatVolume); !strings.HasPrefix(got, "Usage: /volume BTC") {
		t.Fatalf("expected usage, got %q", got)
	}
	if got := quoteReply(src, []string{"nope"}, "price", formatPrice); !strings.HasPrefix(got, "Unknown symbol: NOPE") {
		t.Fatalf("expected unknown symbol, got %q", got)
	}
}

func TestQuoteReplyFailures(t *testing.T) {
	got := quoteReply(&stubSource{err: errors.New("boom")}, []string{"ETH"}, "change", formatChange)
	if got != "Error fetching change for ETH: boom" {
		t.Fatalf("unexpected reply %q", got)
	}
	got = quoteReply(&stubSource{}, []string{"ETH"}, "price", formatPrice)
	if got != "No market data available for ETH right now." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestFormatters(t *testing.T) {
	s := btc()
	if got := formatChange(s); got != "BTC is down -2.35% over 24h\nPrice: $64000.50" {
		t.Fatalf("unexpected change text %q", got)
	}
	if got := formatVolume(&domain.CryptoSnapshot{Symbol: "SOL"}); got != "SOL 24h Trading Volume\nVolume: N/A\nPrice: N/A\n24h Change: N/A" {
		t.Fatalf("unexpected volume text %q", got)
	}
	if got := formatChange(&domain.CryptoSnapshot{Symbol: "SOL"}); !strings.HasPrefix(got, "SOL is flat N/A") {
		t.Fatalf("unexpected change text %q", got)
	}
}

func TestAnalyzeReply(t *testing.T) {
	resp := &domain.AnalysisResponse{
		Symbol:   "BTC",
		Days:     7,
		Snapshot: btc(),
		Metrics:  domain.AnalyticsResult{Volatility: 1.5, PriceChange: 3},
		Analysis: map[string]string{"risk": "moderate", "general": "steady"},
	}
	a := &stubAnalyzer{resp: resp}
	got := analyzeReply(a, "BTC", 7)
	if a.days != 7 {
		t.Fatalf("expected days to be forwarded, got %d", a.days)
	}
	if !strings.HasPrefix(got, "BTC analysis over 7 days\nPrice: $64000.50 (-2.35% 24h)\nVolatility: 1.50%\nPeriod change: 3.00%\n") {
		t.Fatalf("unexpected header:\n%s", got)
	}
	if strings.Index(got, "[general]") > strings.Index(got, "[risk]") {
		t.Fatalf("categories should be sorted:\n%s", got)
	}

	failed := analyzeReply(&stubAnalyzer{err: errors.New("quota")}, "BTC", 7)
	if failed != "Error analyzing BTC: quota" {
		t.Fatalf("unexpected reply %q", failed)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate(strings.Repeat("a", 20), 10); got != "aaaaaaa..." {
		t.Fatalf("unexpected %q", got)
	}
}
