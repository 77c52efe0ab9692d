package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/datecalc/internal/calc"
	"github.com/hitoshi/datecalc/internal/clock"
	"github.com/hitoshi/datecalc/internal/metrics"
	"github.com/hitoshi/datecalc/internal/middleware"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// newTestRouter は実際のcalc.Serviceを組み込んだルーターを返す。
func newTestRouter(t *testing.T, strict bool) (http.Handler, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	mc := metrics.NewCollector(reg)
	svc := calc.NewService(nil,
		clock.FixedClock{T: time.Date(2025, 10, 22, 11, 25, 0, 0, time.Local)},
		mc,
		calc.Config{StrictValidation: strict, CacheTTL: time.Minute},
	)

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Metrics:           mc,
		Gatherer:          reg,
		CalcService:       svc,
	})
	return router, reg
}

func TestNewRouter_Health_NoDatabase(t *testing.T) {
	router, _ := newTestRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "disabled" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHealthHandler_DatabaseStates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDB     string
	}{
		{"up", nil, http.StatusOK, "up"},
		{"down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(&mockHealthChecker{err: tt.err})
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp healthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp.Database != tt.wantDB {
				t.Errorf("database = %q, want %q", resp.Database, tt.wantDB)
			}
		})
	}
}

func TestNewRouter_Difference_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t, false)

	body := `{"from":{"year":2020,"month":1,"day":1},"to":{"year":2021,"month":1,"day":1}}`
	req := httptest.NewRequest(http.MethodPost, "/api/difference", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	var resp calculationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.TotalSeconds != 31622400 || resp.Days != 366 || resp.Negative {
		t.Errorf("response = %+v, want 366 days", resp)
	}
	if resp.ISO8601 != "P366D" {
		t.Errorf("iso8601 = %q, want P366D", resp.ISO8601)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestNewRouter_Since_UsesClock(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/since", bytes.NewBufferString(`{"timestamp":"2025-10-22T11:25:00"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp calculationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.TotalSeconds != 0 {
		t.Errorf("total_seconds = %d, want 0", resp.TotalSeconds)
	}
}

func TestNewRouter_StrictValidation(t *testing.T) {
	tests := []struct {
		strict     bool
		wantStatus int
	}{
		{false, http.StatusOK},
		{true, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		router, _ := newTestRouter(t, tt.strict)
		req := httptest.NewRequest(http.MethodPost, "/api/epoch", bytes.NewBufferString(`{"timestamp":"2023-02-29T00:00:00"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tt.wantStatus {
			t.Errorf("strict=%v: status = %d, want %d", tt.strict, w.Code, tt.wantStatus)
		}
	}
}

func TestNewRouter_CalendarRoute(t *testing.T) {
	router, _ := newTestRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/calendar/2024/2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"days":29`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestNewRouter_HistoryDisabled(t *testing.T) {
	router, _ := newTestRouter(t, false)

	for _, path := range []string{"/api/history", "/api/history/0f8fad5b-d9cb-469f-a165-70867728950e"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, w.Code)
		}
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, false)

	// 変換を1回行ってからスクレイプする
	req := httptest.NewRequest(http.MethodPost, "/api/epoch", bytes.NewBufferString(`{"timestamp":"2020-01-01"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, name := range []string{"datecalc_conversions_total", "datecalc_http_status_total"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Errorf("/metrics missing %s", name)
		}
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 or 405", w.Code)
	}
}
