package handler

import (
	"context"

	"crypto-insight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketService is the market data surface served over HTTP.
type MarketService interface {
	Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
	List(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error)
	Details(ctx context.Context, id string) (*domain.CryptoDetails, error)
	Team(ctx context.Context, symbol string) (*domain.TeamData, error)
	News(ctx context.Context, symbol string) ([]domain.NewsItem, error)
	Series(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error)
	Refresh(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
}

type InsightService interface {
	Analyze(ctx context.Context, symbol string, days int) (*domain.AnalysisResponse, error)
	History(ctx context.Context, symbol string, limit int) ([]domain.AnalysisResponse, error)
}

type Handler struct {
	tracer   trace.Tracer
	market   MarketService
	insight  InsightService
	adminKey string
	checks   map[string]HealthCheck
}

func New(tracer trace.Tracer, market MarketService, insight InsightService, adminKey string) *Handler {
	return &Handler{
		tracer:   tracer,
		market:   market,
		insight:  insight,
		adminKey: adminKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1/crypto")
	api.GET("/analysis/:symbol", h.GetAnalysis)
	api.GET("/analysis/:symbol/history", h.GetAnalysisHistory)
	api.GET("/snapshot/:symbol", h.GetSnapshot)
	api.GET("/market-data", h.GetMarketData)
	api.GET("/details/:id", h.GetDetails)
	api.GET("/team/:symbol", h.GetTeam)
	api.GET("/news/:symbol", h.GetNews)
	api.GET("/chart/:symbol", h.GetChart)

	admin := r.Group("/api/v1/admin", APIKeyAuth(h.adminKey))
	admin.POST("/refresh/:symbol", h.RefreshSnapshot)
}
