package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-insight/internal/config"
	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestRESTClientBuildURL(t *testing.T) {
	c := newRESTClient(trace.NewNoopTracerProvider().Tracer("test"), Endpoint{
		Name:    "test",
		BaseURL: "http://example/api/",
		Paths: map[domain.Operation]string{
			domain.OpSeries: "/coins/{id}/chart?days={days}",
		},
	})

	got, err := c.buildURL(domain.OpSeries, map[string]string{"id": "a b&c", "days": "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "http://example/api/coins/a+b%26c/chart?days=7"; got != want {
		t.Fatalf("buildURL = %s, want %s", got, want)
	}

	if _, err := c.buildURL(domain.OpSeries, map[string]string{"id": "x"}); err == nil {
		t.Fatal("expected error for unfilled placeholder")
	}
	if _, err := c.buildURL(domain.OpNews, nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestRESTClientAgainstServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	endpoint := Endpoint{
		Name:    "server",
		BaseURL: srv.URL,
		Auth:    AuthBearer,
		APIKey:  "k",
		Paths:   map[domain.Operation]string{domain.OpList: "/list"},
	}

	var out struct {
		OK bool `json:"ok"`
	}
	c := newRESTClient(tracer, endpoint)
	if err := c.getJSON(context.Background(), domain.OpList, nil, &out); err != nil || !out.OK {
		t.Fatalf("unexpected result: %+v %v", out, err)
	}

	endpoint.APIKey = "wrong"
	c = newRESTClient(tracer, endpoint)
	err := c.getJSON(context.Background(), domain.OpList, nil, &out)
	if Classify(err) != FailureAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestSupportsAndResolveChains(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	cfg := &config.Config{
		CryptoCompareBaseURL: config.DefaultCryptoCompareURL,
		CoinGeckoBaseURL:     config.DefaultCoinGeckoURL,
		MobulaBaseURL:        config.DefaultMobulaURL,
		CoinPaprikaBaseURL:   config.DefaultCoinPaprikaURL,
		NewsFeedURL:          config.DefaultNewsFeedURL,
	}
	all := NewFromConfig(tracer, cfg)

	if Supports(all[config.ProviderCoinPaprika], domain.OpSnapshot) {
		t.Fatal("coinpaprika should not serve snapshots")
	}
	if !Supports(all[config.ProviderCryptoCompare], domain.OpNews) {
		t.Fatal("cryptocompare should serve news")
	}

	chains, err := ResolveChains(config.DefaultChains, all)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := chains[domain.OpDetails]; len(got) != 2 || got[0].Name() != "coingecko" || got[1].Name() != "mobula" {
		t.Fatalf("unexpected details chain: %v", got)
	}
	if got := chains[domain.OpNews]; len(got) != 2 || got[1].Name() != "rss" {
		t.Fatalf("expected rss as news fallback: %v", got)
	}

	names := map[domain.Operation][]string{}
	for op, chain := range config.DefaultChains {
		names[op] = chain
	}
	names[domain.OpTeam] = []string{"coingecko"}
	if _, err := ResolveChains(names, all); err == nil {
		t.Fatal("expected error when an operation has no capable provider")
	}
}
