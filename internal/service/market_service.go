package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-insight/internal/cache"
	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"
	"crypto-insight/internal/provider"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	maxPerPage = 250
	maxDays    = 365
	maxSymbol  = 20
)

var categoryByOperation = map[domain.Operation]cache.Category{
	domain.OpSnapshot: cache.CategoryMarketData,
	domain.OpList:     cache.CategoryMarketData,
	domain.OpSeries:   cache.CategoryMarketData,
	domain.OpDetails:  cache.CategoryDetails,
	domain.OpTeam:     cache.CategoryTeam,
	domain.OpNews:     cache.CategoryNews,
}

// MarketService resolves every market data operation through its ordered
// provider chain. Lookups go cache first, identical concurrent lookups share
// one fetch, and exhausting the chain yields an empty value instead of an
// error.
type MarketService struct {
	tracer   trace.Tracer
	chains   map[domain.Operation][]provider.Provider
	cache    cache.Cache
	throttle *provider.Throttle
	retry    *provider.RetryPolicy
	timeout  time.Duration
	flights  singleflight.Group
	log      *logrus.Entry
}

// NewMarketService validates the chains up front: every operation needs at
// least one provider able to serve it. store may be nil.
func NewMarketService(
	tracer trace.Tracer,
	chains map[domain.Operation][]provider.Provider,
	store cache.Cache,
	throttle *provider.Throttle,
	retry *provider.RetryPolicy,
	timeout time.Duration,
) (*MarketService, error) {
	for _, op := range domain.Operations {
		if len(chains[op]) == 0 {
			return nil, fmt.Errorf("operation %s has no providers", op)
		}
		for _, p := range chains[op] {
			if !provider.Supports(p, op) {
				return nil, fmt.Errorf("provider %s cannot serve %s", p.Name(), op)
			}
		}
	}
	if retry == nil {
		retry = provider.NewRetryPolicy(1, 0, 1, 0, nil)
	}
	return &MarketService{
		tracer:   tracer,
		chains:   chains,
		cache:    store,
		throttle: throttle,
		retry:    retry,
		timeout:  timeout,
		log:      logger.WithComponent("market-service"),
	}, nil
}

func (s *MarketService) Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.snapshot")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return execute(ctx, s, request[*domain.CryptoSnapshot]{
		op:    domain.OpSnapshot,
		key:   cacheKey(domain.OpSnapshot, symbol),
		empty: func(v *domain.CryptoSnapshot) bool { return v == nil },
		fetch: func(ctx context.Context, p provider.Provider) (*domain.CryptoSnapshot, error) {
			return p.(provider.SnapshotProvider).FetchSnapshot(ctx, symbol)
		},
	})
}

func (s *MarketService) List(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.list")
	defer span.End()

	if page < 1 {
		return nil, domain.InvalidParam("page must be at least 1")
	}
	if perPage < 1 || perPage > maxPerPage {
		return nil, domain.InvalidParam("perPage must be between 1 and %d", maxPerPage)
	}
	return execute(ctx, s, request[[]domain.CryptoSnapshot]{
		op:    domain.OpList,
		key:   cacheKey(domain.OpList, page, perPage),
		zero:  []domain.CryptoSnapshot{},
		empty: func(v []domain.CryptoSnapshot) bool { return len(v) == 0 },
		fetch: func(ctx context.Context, p provider.Provider) ([]domain.CryptoSnapshot, error) {
			return p.(provider.ListProvider).FetchList(ctx, page, perPage)
		},
	})
}

// Details looks up descriptive metadata by CoinGecko-style slug.
func (s *MarketService) Details(ctx context.Context, id string) (*domain.CryptoDetails, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.details")
	defer span.End()

	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, domain.InvalidParam("id is required")
	}
	return execute(ctx, s, request[*domain.CryptoDetails]{
		op:    domain.OpDetails,
		key:   cacheKey(domain.OpDetails, id),
		empty: func(v *domain.CryptoDetails) bool { return v.IsEmpty() },
		fetch: func(ctx context.Context, p provider.Provider) (*domain.CryptoDetails, error) {
			return p.(provider.DetailsProvider).FetchDetails(ctx, id)
		},
	})
}

func (s *MarketService) Team(ctx context.Context, symbol string) (*domain.TeamData, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.team")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return execute(ctx, s, request[*domain.TeamData]{
		op:    domain.OpTeam,
		key:   cacheKey(domain.OpTeam, symbol),
		empty: func(v *domain.TeamData) bool { return v.IsEmpty() },
		fetch: func(ctx context.Context, p provider.Provider) (*domain.TeamData, error) {
			return p.(provider.TeamProvider).FetchTeam(ctx, symbol)
		},
	})
}

func (s *MarketService) News(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.news")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return execute(ctx, s, request[[]domain.NewsItem]{
		op:    domain.OpNews,
		key:   cacheKey(domain.OpNews, symbol),
		zero:  []domain.NewsItem{},
		empty: func(v []domain.NewsItem) bool { return len(v) == 0 },
		fetch: func(ctx context.Context, p provider.Provider) ([]domain.NewsItem, error) {
			return p.(provider.NewsProvider).FetchNews(ctx, symbol)
		},
	})
}

// Series returns daily prices over the last days, oldest first.
func (s *MarketService) Series(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.series")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validDays(days); err != nil {
		return nil, err
	}
	return execute(ctx, s, request[[]domain.TimeSeriesPoint]{
		op:    domain.OpSeries,
		key:   cacheKey(domain.OpSeries, symbol, days),
		zero:  []domain.TimeSeriesPoint{},
		empty: func(v []domain.TimeSeriesPoint) bool { return len(v) == 0 },
		fetch: func(ctx context.Context, p provider.Provider) ([]domain.TimeSeriesPoint, error) {
			return p.(provider.SeriesProvider).FetchSeries(ctx, symbol, days)
		},
	})
}

// Refresh drops the cached snapshot for symbol and fetches it again.
func (s *MarketService) Refresh(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKey(domain.OpSnapshot, symbol)); err != nil {
			s.log.WithError(err).WithField("symbol", symbol).Warn("cache invalidate failed")
		}
	}
	return s.Snapshot(ctx, symbol)
}

type request[T any] struct {
	op    domain.Operation
	key   string
	zero  T
	empty func(T) bool
	fetch func(ctx context.Context, p provider.Provider) (T, error)
}

// execute runs one operation: cache lookup, then a single shared walk of the
// provider chain, then a cache write of the first non-empty answer.
func execute[T any](ctx context.Context, s *MarketService, req request[T]) (T, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation", string(req.op)),
		attribute.String("cache.key", req.key),
	)

	if v, ok := lookup(ctx, s, req); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return v, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The walk is shared by every caller on this key, so it must outlive the
	// caller that started it. Per-attempt timeouts and the retry budget
	// bound it.
	shared := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(req.key, func() (any, error) {
		return walk(shared, s, req), nil
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, ctx.Err().Error())
		return req.zero, ctx.Err()
	case res := <-ch:
		if ctx.Err() != nil {
			return req.zero, ctx.Err()
		}
		span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared))
		return res.Val.(T), nil
	}
}

func lookup[T any](ctx context.Context, s *MarketService, req request[T]) (T, bool) {
	if s.cache == nil {
		return req.zero, false
	}
	raw, ok, err := s.cache.Get(ctx, req.key)
	if err != nil {
		s.log.WithError(err).WithField("key", req.key).Warn("cache read failed")
		return req.zero, false
	}
	if !ok {
		return req.zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil || req.empty(v) {
		s.log.WithField("key", req.key).Warn("discarding unreadable cache entry")
		return req.zero, false
	}
	return v, true
}

// walk tries each provider in priority order. A provider that errors or
// answers empty hands over to the next one.
func walk[T any](ctx context.Context, s *MarketService, req request[T]) T {
	log := s.log.WithFields(logrus.Fields{"operation": req.op, "key": req.key})

	for _, p := range s.chains[req.op] {
		v, attempts, err := call(ctx, s, req, p)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
				"attempts": attempts,
				"failure":  provider.Classify(err),
			}).Warn("provider failed, trying next")
			continue
		}
		if req.empty(v) {
			log.WithField("provider", p.Name()).Debug("provider returned no data, trying next")
			continue
		}

		store(ctx, s, req, v)
		log.WithField("provider", p.Name()).Debug("served by provider")
		return v
	}

	log.Warn("all providers exhausted")
	return req.zero
}

// call runs one provider under the retry policy. Every attempt waits for the
// provider's throttle slot and gets its own timeout.
func call[T any](ctx context.Context, s *MarketService, req request[T], p provider.Provider) (T, int, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.provider-call")
	defer span.End()
	span.SetAttributes(attribute.String("provider", p.Name()))

	var (
		out      T
		attempts int
	)
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		attempts++
		if err := s.throttle.Wait(ctx, p.Name()); err != nil {
			return err
		}
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		v, err := req.fetch(callCtx, p)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		return req.zero, attempts, err
	}
	return out, attempts, nil
}

func store[T any](ctx context.Context, s *MarketService, req request[T], v T) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("key", req.key).Warn("cache encode failed")
		return
	}
	if err := s.cache.Put(context.WithoutCancel(ctx), req.key, raw, categoryByOperation[req.op]); err != nil {
		s.log.WithError(err).WithField("key", req.key).Warn("cache write failed")
	}
}

func cacheKey(op domain.Operation, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, string(op))
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

func validSymbol(symbol string) (string, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", domain.InvalidParam("symbol is required")
	}
	if len(symbol) > maxSymbol {
		return "", domain.InvalidParam("symbol %q is too long", symbol)
	}
	for _, r := range symbol {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-') {
			return "", domain.InvalidParam("symbol %q contains invalid characters", symbol)
		}
	}
	return symbol, nil
}

func validDays(days int) error {
	if days < 1 || days > maxDays {
		return domain.InvalidParam("days must be between 1 and %d", maxDays)
	}
	return nil
}
