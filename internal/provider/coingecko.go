package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CoinGeckoProvider serves snapshots, market lists, details and price series
// from the CoinGecko public API.
type CoinGeckoProvider struct {
	restClient
}

// NewCoinGeckoProvider creates a CoinGecko client. apiKey is optional and
// sent as a demo key header.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL, apiKey string) *CoinGeckoProvider {
	return &CoinGeckoProvider{restClient: newRESTClient(tracer, Endpoint{
		Name:      "coingecko",
		BaseURL:   baseURL,
		Auth:      AuthAPIKey,
		APIKey:    apiKey,
		KeyHeader: "x-cg-demo-api-key",
		Paths: map[domain.Operation]string{
			domain.OpSnapshot: "/coins/markets?vs_currency=usd&ids={id}",
			domain.OpList:     "/coins/markets?vs_currency=usd&order=market_cap_desc&page={page}&per_page={per_page}",
			domain.OpDetails:  "/coins/{id}?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false",
			domain.OpSeries:   "/coins/{id}/market_chart?vs_currency=usd&days={days}",
		},
	})}
}

type coinGeckoMarket struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Image             string   `json:"image"`
	CurrentPrice      *float64 `json:"current_price"`
	MarketCap         *float64 `json:"market_cap"`
	MarketCapRank     *int     `json:"market_cap_rank"`
	TotalVolume       *float64 `json:"total_volume"`
	PriceChangePct24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
}

func (m coinGeckoMarket) toSnapshot() domain.CryptoSnapshot {
	s := domain.CryptoSnapshot{
		ID:                m.ID,
		Name:              m.Name,
		Symbol:            strings.ToUpper(m.Symbol),
		Price:             m.CurrentPrice,
		MarketCap:         m.MarketCap,
		Volume24h:         m.TotalVolume,
		PercentChange24h:  m.PriceChangePct24h,
		CirculatingSupply: m.CirculatingSupply,
		TotalSupply:       m.TotalSupply,
		MaxSupply:         m.MaxSupply,
		Image:             m.Image,
		Source:            "coingecko",
	}
	if m.MarketCapRank != nil {
		s.Rank = *m.MarketCapRank
	}
	return s
}

// FetchSnapshot returns the market snapshot for symbol, or nil when CoinGecko
// does not know the asset.
func (p *CoinGeckoProvider) FetchSnapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	asset, _ := domain.LookupAsset(symbol)
	var markets []coinGeckoMarket
	if err := p.getJSON(ctx, domain.OpSnapshot, map[string]string{"id": asset.CoinGeckoID}, &markets); err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", symbol, err)
	}
	for _, m := range markets {
		if m.ID == asset.CoinGeckoID {
			s := m.toSnapshot()
			return &s, nil
		}
	}
	return nil, nil
}

// FetchList returns one page of assets ordered by market cap.
func (p *CoinGeckoProvider) FetchList(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-list")
	defer span.End()

	var markets []coinGeckoMarket
	err := p.getJSON(ctx, domain.OpList, map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}, &markets)
	if err != nil {
		return nil, fmt.Errorf("fetch list page %d: %w", page, err)
	}

	result := make([]domain.CryptoSnapshot, 0, len(markets))
	for _, m := range markets {
		result = append(result, m.toSnapshot())
	}
	return result, nil
}

// FetchDetails returns descriptive metadata for a CoinGecko id.
func (p *CoinGeckoProvider) FetchDetails(ctx context.Context, id string) (*domain.CryptoDetails, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-details")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	var raw struct {
		ID          string `json:"id"`
		Symbol      string `json:"symbol"`
		Name        string `json:"name"`
		Description struct {
			En string `json:"en"`
		} `json:"description"`
		Links struct {
			Homepage       []string `json:"homepage"`
			BlockchainSite []string `json:"blockchain_site"`
			SubredditURL   string   `json:"subreddit_url"`
			TwitterHandle  string   `json:"twitter_screen_name"`
			ReposURL       struct {
				Github []string `json:"github"`
			} `json:"repos_url"`
		} `json:"links"`
		MarketCapRank *int     `json:"market_cap_rank"`
		Categories    []string `json:"categories"`
		GenesisDate   string   `json:"genesis_date"`
	}
	if err := p.getJSON(ctx, domain.OpDetails, map[string]string{"id": id}, &raw); err != nil {
		return nil, fmt.Errorf("fetch details for %s: %w", id, err)
	}
	if raw.ID == "" && raw.Name == "" {
		return nil, nil
	}

	links := map[string]string{}
	if site := firstNonEmpty(raw.Links.BlockchainSite...); site != "" {
		links["explorer"] = site
	}
	if raw.Links.SubredditURL != "" {
		links["reddit"] = raw.Links.SubredditURL
	}
	if raw.Links.TwitterHandle != "" {
		links["twitter"] = "https://twitter.com/" + raw.Links.TwitterHandle
	}
	if repo := firstNonEmpty(raw.Links.ReposURL.Github...); repo != "" {
		links["source_code"] = repo
	}

	d := &domain.CryptoDetails{
		ID:          raw.ID,
		Name:        raw.Name,
		Symbol:      strings.ToUpper(raw.Symbol),
		Description: strings.TrimSpace(raw.Description.En),
		Homepage:    firstNonEmpty(raw.Links.Homepage...),
		Categories:  compact(raw.Categories),
		GenesisDate: raw.GenesisDate,
		Links:       links,
		Source:      "coingecko",
	}
	if raw.MarketCapRank != nil {
		d.MarketCapRank = *raw.MarketCapRank
	}
	return d, nil
}

// FetchSeries returns daily-or-finer prices over the last days, ascending.
func (p *CoinGeckoProvider) FetchSeries(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-series")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	asset, _ := domain.LookupAsset(symbol)
	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	err := p.getJSON(ctx, domain.OpSeries, map[string]string{
		"id":   asset.CoinGeckoID,
		"days": strconv.Itoa(days),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch series for %s: %w", symbol, err)
	}

	points := make([]domain.TimeSeriesPoint, 0, len(raw.Prices))
	for _, pair := range raw.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Timestamp: time.UnixMilli(int64(pair[0])).UTC(),
			Price:     pair[1],
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}
