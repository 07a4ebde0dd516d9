package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MobulaProvider is a bearer-authenticated fallback for snapshots, lists and
// details.
type MobulaProvider struct {
	restClient
}

func NewMobulaProvider(tracer trace.Tracer, baseURL, apiKey string) *MobulaProvider {
	return &MobulaProvider{restClient: newRESTClient(tracer, Endpoint{
		Name:    "mobula",
		BaseURL: baseURL,
		Auth:    AuthBearer,
		APIKey:  apiKey,
		Paths: map[domain.Operation]string{
			domain.OpSnapshot: "/market/data?asset={symbol}",
			domain.OpList:     "/market/multi?limit={per_page}&page={page}",
			domain.OpDetails:  "/metadata?asset={id}",
		},
	})}
}

type mobulaAsset struct {
	ID                json.Number `json:"id"`
	Name              string      `json:"name"`
	Symbol            string      `json:"symbol"`
	Logo              string      `json:"logo"`
	Price             *float64    `json:"price"`
	MarketCap         *float64    `json:"market_cap"`
	Volume            *float64    `json:"volume"`
	PriceChange24h    *float64    `json:"price_change_24h"`
	Rank              int         `json:"rank"`
	CirculatingSupply float64     `json:"circulating_supply"`
	TotalSupply       float64     `json:"total_supply"`
	MaxSupply         float64     `json:"max_supply"`
}

func (a mobulaAsset) toSnapshot() domain.CryptoSnapshot {
	symbol := domain.NormalizeSymbol(a.Symbol)
	asset, known := domain.LookupAsset(symbol)
	id := a.ID.String()
	if known {
		id = asset.CoinGeckoID
	}
	return domain.CryptoSnapshot{
		ID:                id,
		Name:              firstNonEmpty(a.Name, asset.Name),
		Symbol:            symbol,
		Price:             a.Price,
		MarketCap:         a.MarketCap,
		Volume24h:         a.Volume,
		PercentChange24h:  a.PriceChange24h,
		Rank:              a.Rank,
		CirculatingSupply: positive(a.CirculatingSupply),
		TotalSupply:       positive(a.TotalSupply),
		MaxSupply:         positive(a.MaxSupply),
		Image:             a.Logo,
		Source:            "mobula",
	}
}

// FetchSnapshot returns the snapshot for symbol, or nil when Mobula has no
// price for it.
func (p *MobulaProvider) FetchSnapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "mobula.fetch-snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	var raw struct {
		Data *mobulaAsset `json:"data"`
	}
	if err := p.getJSON(ctx, domain.OpSnapshot, map[string]string{"symbol": symbol}, &raw); err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", symbol, err)
	}
	if raw.Data == nil || raw.Data.Price == nil {
		return nil, nil
	}
	if raw.Data.Symbol == "" {
		raw.Data.Symbol = symbol
	}
	s := raw.Data.toSnapshot()
	return &s, nil
}

// FetchList returns one page of assets.
func (p *MobulaProvider) FetchList(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "mobula.fetch-list")
	defer span.End()

	var raw struct {
		Data []mobulaAsset `json:"data"`
	}
	err := p.getJSON(ctx, domain.OpList, map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch list page %d: %w", page, err)
	}

	result := make([]domain.CryptoSnapshot, 0, len(raw.Data))
	for _, a := range raw.Data {
		if a.Price == nil {
			continue
		}
		result = append(result, a.toSnapshot())
	}
	return result, nil
}

// FetchDetails returns metadata for an asset name or slug.
func (p *MobulaProvider) FetchDetails(ctx context.Context, id string) (*domain.CryptoDetails, error) {
	ctx, span := p.tracer.Start(ctx, "mobula.fetch-details")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	var raw struct {
		Data *struct {
			Name        string   `json:"name"`
			Symbol      string   `json:"symbol"`
			Description string   `json:"description"`
			Website     string   `json:"website"`
			Twitter     string   `json:"twitter"`
			Discord     string   `json:"discord"`
			Chat        string   `json:"chat"`
			Rank        int      `json:"rank"`
			Categories  []string `json:"categories"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, domain.OpDetails, map[string]string{"id": id}, &raw); err != nil {
		return nil, fmt.Errorf("fetch details for %s: %w", id, err)
	}
	if raw.Data == nil || (raw.Data.Name == "" && raw.Data.Description == "") {
		return nil, nil
	}

	links := map[string]string{}
	if raw.Data.Twitter != "" {
		links["twitter"] = raw.Data.Twitter
	}
	if raw.Data.Discord != "" {
		links["discord"] = raw.Data.Discord
	}
	if raw.Data.Chat != "" {
		links["chat"] = raw.Data.Chat
	}

	return &domain.CryptoDetails{
		ID:            strings.ToLower(strings.TrimSpace(id)),
		Name:          raw.Data.Name,
		Symbol:        domain.NormalizeSymbol(raw.Data.Symbol),
		Description:   strings.TrimSpace(raw.Data.Description),
		MarketCapRank: raw.Data.Rank,
		Homepage:      raw.Data.Website,
		Categories:    compact(raw.Data.Categories),
		Links:         links,
		Source:        "mobula",
	}, nil
}
