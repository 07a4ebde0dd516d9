package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	cryptoCompareMediaURL = "https://www.cryptocompare.com"
	maxNewsItems          = 20
)

// CryptoCompareProvider serves snapshots, market lists, price series and news
// from the CryptoCompare min-api.
type CryptoCompareProvider struct {
	restClient
}

func NewCryptoCompareProvider(tracer trace.Tracer, baseURL, apiKey string) *CryptoCompareProvider {
	return &CryptoCompareProvider{restClient: newRESTClient(tracer, Endpoint{
		Name:    "cryptocompare",
		BaseURL: baseURL,
		Auth:    AuthAPIKey,
		APIKey:  apiKey,
		Paths: map[domain.Operation]string{
			domain.OpSnapshot: "/pricemultifull?fsyms={symbol}&tsyms=USD",
			domain.OpList:     "/top/mktcapfull?limit={per_page}&tsym=USD&page={page}",
			domain.OpSeries:   "/v2/histoday?fsym={symbol}&tsym=USD&limit={days}",
			domain.OpNews:     "/v2/news/?categories={symbol}",
		},
	})}
}

type cryptoCompareRaw struct {
	FromSymbol        string   `json:"FROMSYMBOL"`
	Price             *float64 `json:"PRICE"`
	MarketCap         *float64 `json:"MKTCAP"`
	Volume24hTo       *float64 `json:"VOLUME24HOURTO"`
	TotalVolume24hTo  *float64 `json:"TOTALVOLUME24HTO"`
	ChangePct24h      *float64 `json:"CHANGEPCT24HOUR"`
	Supply            float64  `json:"SUPPLY"`
	CirculatingSupply float64  `json:"CIRCULATINGSUPPLY"`
	ImageURL          string   `json:"IMAGEURL"`
}

func (r cryptoCompareRaw) toSnapshot(symbol string) domain.CryptoSnapshot {
	asset, _ := domain.LookupAsset(symbol)
	volume := r.TotalVolume24hTo
	if volume == nil {
		volume = r.Volume24hTo
	}
	circulating := positive(r.CirculatingSupply)
	if circulating == nil {
		circulating = positive(r.Supply)
	}
	s := domain.CryptoSnapshot{
		ID:                asset.CoinGeckoID,
		Name:              asset.Name,
		Symbol:            asset.Symbol,
		Price:             r.Price,
		MarketCap:         r.MarketCap,
		Volume24h:         volume,
		PercentChange24h:  r.ChangePct24h,
		CirculatingSupply: circulating,
		TotalSupply:       positive(r.Supply),
		Source:            "cryptocompare",
	}
	if r.ImageURL != "" {
		s.Image = cryptoCompareMediaURL + r.ImageURL
	}
	return s
}

// checkEnvelope detects the {"Response":"Error"} body CryptoCompare returns
// with HTTP 200.
func (p *CryptoCompareProvider) checkEnvelope(body []byte) error {
	var env struct {
		Response string `json:"Response"`
		Message  string `json:"Message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("cryptocompare decode: %w: %v", ErrMalformed, err)
	}
	if !strings.EqualFold(env.Response, "Error") {
		return nil
	}
	if strings.Contains(strings.ToLower(env.Message), "rate limit") {
		return &StatusError{Provider: p.Name(), StatusCode: http.StatusTooManyRequests, Body: env.Message}
	}
	return fmt.Errorf("cryptocompare: %w: %s", ErrMalformed, env.Message)
}

func (p *CryptoCompareProvider) fetch(ctx context.Context, op domain.Operation, params map[string]string, out any) error {
	body, err := p.get(ctx, op, params)
	if err != nil {
		return err
	}
	if err := p.checkEnvelope(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cryptocompare decode %s: %w: %v", op, ErrMalformed, err)
	}
	return nil
}

// FetchSnapshot returns the USD snapshot for symbol, or nil when the symbol
// is unknown.
func (p *CryptoCompareProvider) FetchSnapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	var raw struct {
		Raw map[string]map[string]cryptoCompareRaw `json:"RAW"`
	}
	if err := p.fetch(ctx, domain.OpSnapshot, map[string]string{"symbol": symbol}, &raw); err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", symbol, err)
	}
	usd, ok := raw.Raw[symbol]["USD"]
	if !ok || usd.Price == nil {
		return nil, nil
	}
	s := usd.toSnapshot(symbol)
	return &s, nil
}

// FetchList returns one page of the top assets by market cap. page is
// 1-based; CryptoCompare pages are 0-based.
func (p *CryptoCompareProvider) FetchList(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-list")
	defer span.End()

	var raw struct {
		Data []struct {
			CoinInfo struct {
				Name     string `json:"Name"`
				FullName string `json:"FullName"`
				ImageURL string `json:"ImageUrl"`
			} `json:"CoinInfo"`
			Raw map[string]cryptoCompareRaw `json:"RAW"`
		} `json:"Data"`
	}
	err := p.fetch(ctx, domain.OpList, map[string]string{
		"page":     strconv.Itoa(page - 1),
		"per_page": strconv.Itoa(perPage),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch list page %d: %w", page, err)
	}

	result := make([]domain.CryptoSnapshot, 0, len(raw.Data))
	for i, item := range raw.Data {
		usd, ok := item.Raw["USD"]
		if !ok {
			continue
		}
		s := usd.toSnapshot(item.CoinInfo.Name)
		if item.CoinInfo.FullName != "" {
			s.Name = item.CoinInfo.FullName
		}
		if s.Image == "" && item.CoinInfo.ImageURL != "" {
			s.Image = cryptoCompareMediaURL + item.CoinInfo.ImageURL
		}
		s.Rank = (page-1)*perPage + i + 1
		result = append(result, s)
	}
	return result, nil
}

// FetchSeries returns daily closes for the last days, ascending.
func (p *CryptoCompareProvider) FetchSeries(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-series")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	var raw struct {
		Data struct {
			Data []struct {
				Time  int64   `json:"time"`
				Close float64 `json:"close"`
			} `json:"Data"`
		} `json:"Data"`
	}
	err := p.fetch(ctx, domain.OpSeries, map[string]string{
		"symbol": symbol,
		"days":   strconv.Itoa(days),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch series for %s: %w", symbol, err)
	}

	points := make([]domain.TimeSeriesPoint, 0, len(raw.Data.Data))
	for _, d := range raw.Data.Data {
		if d.Time == 0 {
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Timestamp: time.Unix(d.Time, 0).UTC(),
			Price:     d.Close,
		})
	}
	return points, nil
}

// FetchNews returns recent articles tagged with symbol.
func (p *CryptoCompareProvider) FetchNews(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	var raw struct {
		Data []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Source      string `json:"source"`
			PublishedOn int64  `json:"published_on"`
			SourceInfo  struct {
				Name string `json:"name"`
			} `json:"source_info"`
		} `json:"Data"`
	}
	if err := p.fetch(ctx, domain.OpNews, map[string]string{"symbol": symbol}, &raw); err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}

	items := make([]domain.NewsItem, 0, len(raw.Data))
	for _, d := range raw.Data {
		if len(items) == maxNewsItems {
			break
		}
		if d.Title == "" {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       d.Title,
			URL:         d.URL,
			Source:      firstNonEmpty(d.SourceInfo.Name, d.Source),
			PublishedAt: time.Unix(d.PublishedOn, 0).UTC(),
		})
	}
	return items, nil
}
