package handler

import (
	"crypto-insight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetAnalysis godoc
// @Summary      Analyze a crypto asset
// @Description  Aggregates snapshot, details, team, news and price history, derives metrics and generates the analysis text
// @Tags         analysis
// @Produce      json
// @Param        symbol  path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        days    query  int     false  "Window in days (1-365)"  default(30)
// @Success      200  {object}  APIResponse{data=domain.AnalysisResponse}
// @Failure      400  {object}  APIResponse
// @Failure      404  {object}  APIResponse
// @Router       /api/v1/crypto/analysis/{symbol} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	days, err := intQuery(c, "days", 30)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.insight.Analyze(ctx, symbol, days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Analysis generated for "+symbol, resp)
}

// GetAnalysisHistory godoc
// @Summary      List archived analyses
// @Description  Returns previously generated analyses for an asset, newest first
// @Tags         analysis
// @Produce      json
// @Param        symbol  path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        limit   query  int     false  "Number of entries (max 100)"  default(10)
// @Success      200  {object}  APIResponse{data=[]domain.AnalysisResponse}
// @Failure      503  {object}  APIResponse
// @Router       /api/v1/crypto/analysis/{symbol}/history [get]
func (h *Handler) GetAnalysisHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis-history")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	limit, err := intQuery(c, "limit", 10)
	if err != nil {
		respondError(c, err)
		return
	}

	history, err := h.insight.History(ctx, symbol, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Analysis history retrieved", history)
}

// GetSnapshot godoc
// @Summary      Get a market snapshot
// @Description  Returns price, market cap, volume and supply for an asset from the first provider that answers
// @Tags         market
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g., BTC, ETH)"
// @Success      200  {object}  APIResponse{data=domain.CryptoSnapshot}
// @Failure      404  {object}  APIResponse
// @Router       /api/v1/crypto/snapshot/{symbol} [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-snapshot")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	snap, err := h.market.Snapshot(ctx, symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	if snap == nil {
		respondError(c, domain.NotFound("no market data found for %s", symbol))
		return
	}
	respondOK(c, "Snapshot retrieved", snap)
}

// GetMarketData godoc
// @Summary      List assets by market cap
// @Description  Returns a page of assets ordered by market capitalisation
// @Tags         market
// @Produce      json
// @Param        page     query  int  false  "Page number"           default(1)
// @Param        perPage  query  int  false  "Page size (1-250)"     default(100)
// @Success      200  {object}  APIResponse{data=[]domain.CryptoSnapshot}
// @Failure      400  {object}  APIResponse
// @Router       /api/v1/crypto/market-data [get]
func (h *Handler) GetMarketData(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-data")
	defer span.End()

	page, err := intQuery(c, "page", 1)
	if err != nil {
		respondError(c, err)
		return
	}
	perPage, err := intQuery(c, "perPage", 100)
	if err != nil {
		respondError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("page", page), attribute.Int("per_page", perPage))

	list, err := h.market.List(ctx, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Market data retrieved", list)
}

// GetDetails godoc
// @Summary      Get asset details
// @Description  Returns descriptive metadata (description, links, categories) by CoinGecko id
// @Tags         market
// @Produce      json
// @Param        id  path  string  true  "Asset id (e.g., bitcoin)"
// @Success      200  {object}  APIResponse{data=domain.CryptoDetails}
// @Failure      404  {object}  APIResponse
// @Router       /api/v1/crypto/details/{id} [get]
func (h *Handler) GetDetails(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-details")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("id", id))

	details, err := h.market.Details(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if details == nil {
		respondError(c, domain.NotFound("no details found for %s", id))
		return
	}
	respondOK(c, "Details retrieved", details)
}

// GetTeam godoc
// @Summary      Get project team
// @Description  Returns team members and project links for an asset
// @Tags         market
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g., BTC, ETH)"
// @Success      200  {object}  APIResponse{data=domain.TeamData}
// @Failure      404  {object}  APIResponse
// @Router       /api/v1/crypto/team/{symbol} [get]
func (h *Handler) GetTeam(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-team")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	team, err := h.market.Team(ctx, symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	if team == nil {
		respondError(c, domain.NotFound("no team data found for %s", symbol))
		return
	}
	respondOK(c, "Team data retrieved", team)
}

// GetNews godoc
// @Summary      Get recent news
// @Description  Returns recent news articles mentioning an asset
// @Tags         market
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g., BTC, ETH)"
// @Success      200  {object}  APIResponse{data=[]domain.NewsItem}
// @Router       /api/v1/crypto/news/{symbol} [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	news, err := h.market.News(ctx, symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "News retrieved", news)
}

// GetChart godoc
// @Summary      Get price history
// @Description  Returns daily prices over the requested window, oldest first
// @Tags         market
// @Produce      json
// @Param        symbol  path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        days    query  int     false  "Window in days (1-365)"  default(30)
// @Success      200  {object}  APIResponse{data=[]domain.TimeSeriesPoint}
// @Failure      400  {object}  APIResponse
// @Router       /api/v1/crypto/chart/{symbol} [get]
func (h *Handler) GetChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chart")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	days, err := intQuery(c, "days", 30)
	if err != nil {
		respondError(c, err)
		return
	}

	series, err := h.market.Series(ctx, symbol, days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Chart data retrieved", series)
}

// RefreshSnapshot godoc
// @Summary      Refresh a cached snapshot
// @Description  Drops the cached snapshot for an asset and fetches it again
// @Tags         admin
// @Produce      json
// @Param        symbol     path    string  true  "Asset symbol (e.g., BTC, ETH)"
// @Param        X-API-Key  header  string  false "Admin API key"
// @Success      200  {object}  APIResponse{data=domain.CryptoSnapshot}
// @Failure      401  {object}  APIResponse
// @Failure      403  {object}  APIResponse
// @Router       /api/v1/admin/refresh/{symbol} [post]
func (h *Handler) RefreshSnapshot(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-snapshot")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	snap, err := h.market.Refresh(ctx, symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	if snap == nil {
		respondError(c, domain.NotFound("no market data found for %s", symbol))
		return
	}
	respondOK(c, "Snapshot refreshed", snap)
}
