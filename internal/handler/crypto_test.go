package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-insight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubMarket struct {
	snapshot *domain.CryptoSnapshot
	list     []domain.CryptoSnapshot
	details  *domain.CryptoDetails
	team     *domain.TeamData
	news     []domain.NewsItem
	series   []domain.TimeSeriesPoint
	err      error

	gotPage, gotPerPage, gotDays int
	refreshed                    string
}

func (m *stubMarket) Snapshot(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	return m.snapshot, m.err
}

func (m *stubMarket) List(ctx context.Context, page, perPage int) ([]domain.CryptoSnapshot, error) {
	m.gotPage, m.gotPerPage = page, perPage
	return m.list, m.err
}

func (m *stubMarket) Details(ctx context.Context, id string) (*domain.CryptoDetails, error) {
	return m.details, m.err
}

func (m *stubMarket) Team(ctx context.Context, symbol string) (*domain.TeamData, error) {
	return m.team, m.err
}

func (m *stubMarket) News(ctx context.Context, symbol string) ([]domain.NewsItem, error) {
	return m.news, m.err
}

func (m *stubMarket) Series(ctx context.Context, symbol string, days int) ([]domain.TimeSeriesPoint, error) {
	m.gotDays = days
	return m.series, m.err
}

func (m *stubMarket) Refresh(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error) {
	m.refreshed = symbol
	return m.snapshot, m.err
}

type stubInsight struct {
	resp    *domain.AnalysisResponse
	history []domain.AnalysisResponse
	err     error
	gotDays int
}

func (s *stubInsight) Analyze(ctx context.Context, symbol string, days int) (*domain.AnalysisResponse, error) {
	s.gotDays = days
	return s.resp, s.err
}

func (s *stubInsight) History(ctx context.Context, symbol string, limit int) ([]domain.AnalysisResponse, error) {
	return s.history, s.err
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *domain.APIError `json:"error"`
}

func serve(t *testing.T, h *Handler, method, path string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v (%s)", err, w.Body.String())
	}
	return w, body
}

func newTestHandler(market *stubMarket, insight *stubInsight, adminKey string) *Handler {
	return New(trace.NewNoopTracerProvider().Tracer("handler-test"), market, insight, adminKey)
}

func TestGetSnapshot(t *testing.T) {
	market := &stubMarket{snapshot: &domain.CryptoSnapshot{Symbol: "BTC", Price: domain.Float(42)}}
	w, body := serve(t, newTestHandler(market, &stubInsight{}, ""), http.MethodGet, "/api/v1/crypto/snapshot/btc", nil)

	if w.Code != http.StatusOK || !body.Success {
		t.Fatalf("expected success, got %d %+v", w.Code, body)
	}
	var snap domain.CryptoSnapshot
	if err := json.Unmarshal(body.Data, &snap); err != nil || snap.Symbol != "BTC" || *snap.Price != 42 {
		t.Fatalf("unexpected data %s", body.Data)
	}
}

func TestGetSnapshotSoftEmptyIsNotFound(t *testing.T) {
	w, body := serve(t, newTestHandler(&stubMarket{}, &stubInsight{}, ""), http.MethodGet, "/api/v1/crypto/snapshot/NOPE", nil)

	if w.Code != http.StatusNotFound || body.Success {
		t.Fatalf("expected 404, got %d %+v", w.Code, body)
	}
	if body.Error == nil || body.Error.Status != http.StatusNotFound || body.Error.Provider != "API" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
}

func TestGetMarketDataParams(t *testing.T) {
	market := &stubMarket{list: []domain.CryptoSnapshot{}}
	h := newTestHandler(market, &stubInsight{}, "")

	w, body := serve(t, h, http.MethodGet, "/api/v1/crypto/market-data?page=2&perPage=50", nil)
	if w.Code != http.StatusOK || market.gotPage != 2 || market.gotPerPage != 50 {
		t.Fatalf("unexpected result %d page=%d perPage=%d", w.Code, market.gotPage, market.gotPerPage)
	}
	if string(body.Data) != "[]" {
		t.Fatalf("expected empty list, got %s", body.Data)
	}

	w, _ = serve(t, h, http.MethodGet, "/api/v1/crypto/market-data?page=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric page, got %d", w.Code)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid param", domain.InvalidParam("days must be between 1 and 365"), http.StatusBadRequest},
		{"not found", domain.NotFound("no market data found for X"), http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight := &stubInsight{err: tt.err}
			w, body := serve(t, newTestHandler(&stubMarket{}, insight, ""), http.MethodGet, "/api/v1/crypto/analysis/BTC?days=400", nil)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if body.Success || body.Error == nil || body.Error.Status != tt.want {
				t.Fatalf("unexpected body %+v", body)
			}
			if insight.gotDays != 400 {
				t.Fatalf("days not forwarded, got %d", insight.gotDays)
			}
		})
	}
}

func TestGetAnalysis(t *testing.T) {
	insight := &stubInsight{resp: &domain.AnalysisResponse{ID: "run-1", Symbol: "ETH", Days: 30}}
	w, body := serve(t, newTestHandler(&stubMarket{}, insight, ""), http.MethodGet, "/api/v1/crypto/analysis/eth", nil)

	if w.Code != http.StatusOK || insight.gotDays != 30 {
		t.Fatalf("unexpected result %d days=%d", w.Code, insight.gotDays)
	}
	var resp domain.AnalysisResponse
	if err := json.Unmarshal(body.Data, &resp); err != nil || resp.ID != "run-1" {
		t.Fatalf("unexpected data %s", body.Data)
	}
}

func TestGetChartDefaultsDays(t *testing.T) {
	market := &stubMarket{series: []domain.TimeSeriesPoint{}}
	w, _ := serve(t, newTestHandler(market, &stubInsight{}, ""), http.MethodGet, "/api/v1/crypto/chart/BTC", nil)
	if w.Code != http.StatusOK || market.gotDays != 30 {
		t.Fatalf("unexpected result %d days=%d", w.Code, market.gotDays)
	}
}

func TestRefreshRequiresAPIKey(t *testing.T) {
	market := &stubMarket{snapshot: &domain.CryptoSnapshot{Symbol: "BTC"}}
	h := newTestHandler(market, &stubInsight{}, "secret")

	w, _ := serve(t, h, http.MethodPost, "/api/v1/admin/refresh/BTC", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w, _ = serve(t, h, http.MethodPost, "/api/v1/admin/refresh/BTC", http.Header{"X-Api-Key": {"wrong"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}
	if market.refreshed != "" {
		t.Fatal("refresh must not run without a valid key")
	}

	w, body := serve(t, h, http.MethodPost, "/api/v1/admin/refresh/btc", http.Header{"X-Api-Key": {"secret"}})
	if w.Code != http.StatusOK || !body.Success || market.refreshed != "BTC" {
		t.Fatalf("expected refresh to succeed, got %d %+v refreshed=%q", w.Code, body, market.refreshed)
	}
}

func TestRefreshOpenWhenKeyUnset(t *testing.T) {
	market := &stubMarket{snapshot: &domain.CryptoSnapshot{Symbol: "BTC"}}
	w, _ := serve(t, newTestHandler(market, &stubInsight{}, ""), http.MethodPost, "/api/v1/admin/refresh/BTC", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", w.Code)
	}
}
