package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-sim-backend/internal/config"
	"stock-sim-backend/internal/stocks"
	"stock-sim-backend/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *stocks.Manager) {
	t.Helper()

	cfg := &config.Config{
		HttpPort:    "0",
		CorsOrigins: []string{"*"},
	}

	manager := stocks.NewManager(storage.NewMemoryStorage(), 100, 60)
	manager.Seed(context.Background())

	simulator := stocks.NewSimulator(manager, time.Minute, nil)
	t.Cleanup(simulator.Stop)

	return New(cfg, manager, simulator, nil, nil), manager
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestPopularEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stock/popular")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Stocks []stocks.FormattedStock `json:"stocks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Stocks) != 20 {
		t.Errorf("expected 20 stocks, got %d", len(body.Stocks))
	}
}

func TestSpecificEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stock/specific/reliance")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Final []stocks.Candle `json:"final"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Final) == 0 {
		t.Error("expected candle series")
	}
}

func TestSpecificEndpointUnknownSymbol(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stock/specific/NOPE")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stock/history/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/stock/history/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestPortfolioEndpoint(t *testing.T) {
	s, manager := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stock/portfolio")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Total != manager.TotalValue() {
		t.Errorf("expected total %f, got %f", manager.TotalValue(), body.Total)
	}
}

func TestSimulationControl(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/simulation/start")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/simulation/stop")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserRoutesWithoutDB(t *testing.T) {
	s, _ := newTestServer(t)

	// auth == nil: пользовательские маршруты отвечают 503
	rec := doRequest(t, s, http.MethodPost, "/api/v1/user/signup")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for signup, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/user/profile")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for profile, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/api/v1/stock/popular")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS headers")
	}
}
