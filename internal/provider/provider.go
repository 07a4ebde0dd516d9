package provider

import (
	"context"
	"fmt"

	"crypto-insight/internal/config"
	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"

	"go.opentelemetry.io/otel/trace"
)

// Provider is an upstream market data source. Capabilities are expressed by
// the operation interfaces below.
type Provider interface {
	Name() string
}

type SnapshotProvider interface {
	Provider
	FetchSnapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
}

type ListProvider interface {
	Provider
	FetchList(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error)
}

type DetailsProvider interface {
	Provider
	FetchDetails(ctx context.Context, id string) (*domain.CryptoDetails, error)
}

type TeamProvider interface {
	Provider
	FetchTeam(ctx context.Context, symbol string) (*domain.TeamData, error)
}

type NewsProvider interface {
	Provider
	FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error)
}

type SeriesProvider interface {
	Provider
	FetchSeries(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error)
}

// Supports reports whether p implements the capability for op.
func Supports(p Provider, op domain.Operation) bool {
	switch op {
	case domain.OpSnapshot:
		_, ok := p.(SnapshotProvider)
		return ok
	case domain.OpList:
		_, ok := p.(ListProvider)
		return ok
	case domain.OpDetails:
		_, ok := p.(DetailsProvider)
		return ok
	case domain.OpTeam:
		_, ok := p.(TeamProvider)
		return ok
	case domain.OpNews:
		_, ok := p.(NewsProvider)
		return ok
	case domain.OpSeries:
		_, ok := p.(SeriesProvider)
		return ok
	}
	return false
}

// NewFromConfig builds every known provider keyed by name.
func NewFromConfig(tracer trace.Tracer, cfg *config.Config) map[string]Provider {
	return map[string]Provider{
		config.ProviderCryptoCompare: NewCryptoCompareProvider(tracer, cfg.CryptoCompareBaseURL, cfg.CryptoCompareAPIKey),
		config.ProviderCoinGecko:     NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey),
		config.ProviderMobula:        NewMobulaProvider(tracer, cfg.MobulaBaseURL, cfg.MobulaAPIKey),
		config.ProviderCoinPaprika:   NewCoinPaprikaProvider(tracer, cfg.CoinPaprikaBaseURL),
		config.ProviderRSS:           NewRSSNewsProvider(tracer, cfg.NewsFeedURL),
	}
}

// ResolveChains turns configured provider names into ordered provider lists.
// Providers lacking the operation's capability are skipped; an operation
// left without providers is an error.
func ResolveChains(names map[domain.Operation][]string, providers map[string]Provider) (map[domain.Operation][]Provider, error) {
	log := logger.WithComponent("provider")

	chains := make(map[domain.Operation][]Provider, len(domain.Operations))
	for _, op := range domain.Operations {
		for _, name := range names[op] {
			p, ok := providers[name]
			if !ok {
				log.WithField("operation", op).Warnf("unknown provider %q", name)
				continue
			}
			if !Supports(p, op) {
				log.WithField("operation", op).Warnf("provider %q cannot serve this operation", name)
				continue
			}
			chains[op] = append(chains[op], p)
		}
		if len(chains[op]) == 0 {
			return nil, fmt.Errorf("operation %s has no usable providers", op)
		}
	}
	return chains, nil
}
