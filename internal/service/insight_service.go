package service

import (
	"context"
	"net/http"
	"time"

	"crypto-insight/internal/analytics"
	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// MarketQuerier is the subset of MarketService the aggregation needs.
type MarketQuerier interface {
	Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
	Details(ctx context.Context, id string) (*domain.CryptoDetails, error)
	Team(ctx context.Context, symbol string) (*domain.TeamData, error)
	News(ctx context.Context, symbol string) ([]domain.NewsItem, error)
	Series(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error)
}

type ContextFormatter interface {
	Format(snapshot *domain.CryptoSnapshot, series []domain.TimeSeriesPoint, metrics domain.AnalyticsResult, days int) string
}

type AnalysisGenerator interface {
	Analyze(ctx context.Context, symbol, contextText string) map[string]string
}

// AnalysisArchive persists generated analyses.
type AnalysisArchive interface {
	Save(ctx context.Context, a *domain.AnalysisResponse) error
	Recent(ctx context.Context, symbol string, limit int) ([]domain.AnalysisResponse, error)
}

type InsightService struct {
	tracer    trace.Tracer
	market    MarketQuerier
	formatter ContextFormatter
	analyst   AnalysisGenerator
	archive   AnalysisArchive
	now       func() time.Time
	newID     func() string
}

// NewInsightService wires the aggregation. analyst and archive may be nil.
func NewInsightService(
	tracer trace.Tracer,
	market MarketQuerier,
	formatter ContextFormatter,
	analyst AnalysisGenerator,
	archive AnalysisArchive,
) *InsightService {
	return &InsightService{
		tracer:    tracer,
		market:    market,
		formatter: formatter,
		analyst:   analyst,
		archive:   archive,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Analyze gathers snapshot, details, team, news and price series for symbol
// concurrently, derives metrics and renders the analysis context. An unknown
// symbol (no snapshot from any provider) is reported as not found.
func (s *InsightService) Analyze(ctx context.Context, symbol string, days int) (*domain.AnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "insight-service.analyze")
	defer span.End()

	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validDays(days); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	log := logger.WithComponent("insight-service").WithField("symbol", symbol)
	asset, _ := domain.LookupAsset(symbol)

	var (
		snapshot *domain.CryptoSnapshot
		details  *domain.CryptoDetails
		team     *domain.TeamData
		news     []domain.NewsItem
		series   []domain.TimeSeriesPoint
	)

	// Plain group: one slow or failing branch must not cancel the others.
	var g errgroup.Group
	g.Go(func() (err error) {
		snapshot, err = s.market.Snapshot(ctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		details, err = s.market.Details(ctx, asset.CoinGeckoID)
		return err
	})
	g.Go(func() (err error) {
		team, err = s.market.Team(ctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		news, err = s.market.News(ctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		series, err = s.market.Series(ctx, symbol, days)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if snapshot == nil {
		return nil, domain.NotFound("no market data found for %s", symbol)
	}

	metrics, err := analytics.ComputeMetrics(series)
	if err != nil {
		log.WithError(err).Warn("price series rejected, using default metrics")
		metrics = analytics.Default()
	}

	resp := &domain.AnalysisResponse{
		ID:          s.newID(),
		Symbol:      symbol,
		Days:        days,
		Snapshot:    snapshot,
		Details:     details,
		Team:        team,
		News:        news,
		ChartData:   series,
		Metrics:     metrics,
		Context:     s.formatter.Format(snapshot, series, metrics, days),
		GeneratedAt: s.now().UTC(),
	}

	if s.analyst != nil {
		resp.Analysis = s.analyst.Analyze(ctx, symbol, resp.Context)
	}

	if s.archive != nil {
		if err := s.archive.Save(context.WithoutCancel(ctx), resp); err != nil {
			log.WithError(err).Warn("failed to archive analysis")
		}
	}

	return resp, nil
}

// History lists archived analyses for symbol, newest first.
func (s *InsightService) History(ctx context.Context, symbol string, limit int) ([]domain.AnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "insight-service.history")
	defer span.End()

	if s.archive == nil {
		return nil, &domain.APIError{Message: "analysis archive is disabled", Provider: "archive", Status: http.StatusServiceUnavailable}
	}
	symbol, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	out, err := s.archive.Recent(ctx, symbol, limit)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.APIError{Message: "failed to read analysis history", Provider: "archive", Status: http.StatusInternalServerError, Err: err}
	}
	if out == nil {
		out = []domain.AnalysisResponse{}
	}
	return out, nil
}
