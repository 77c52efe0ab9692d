package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// statusMetrics はRecordHTTPStatusの呼び出しを記録するモック。
type statusMetrics struct {
	mu       sync.Mutex
	statuses []int
}

func (m *statusMetrics) RecordConversion(bool)                  {}
func (m *statusMetrics) RecordDifference(bool)                  {}
func (m *statusMetrics) RecordValidationFailure()               {}
func (m *statusMetrics) RecordCalculationLatency(time.Duration) {}
func (m *statusMetrics) RecordHistorySaved()                    {}
func (m *statusMetrics) RecordHistoryDeleted(int64)             {}
func (m *statusMetrics) RecordHTTPStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, code)
}

func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	mc := &statusMetrics{}
	handler := NewMetricsMiddleware(mc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/history/x", nil))

	if len(mc.statuses) != 1 || mc.statuses[0] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [404]", mc.statuses)
	}
}

// newChainRouter は本番と同じ順序でミドルウェアを積んだchiルーターを返す。
func newChainRouter(logger *slog.Logger, rl *RateLimiter, mc *statusMetrics) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(NewRecoveryMiddleware())
	r.Use(NewRequestIDMiddleware())
	r.Use(NewLoggingMiddleware(logger))
	r.Use(NewMetricsMiddleware(mc))
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Use(rl.Middleware())

	r.Get("/api/now", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"request_id": RequestIDFromContext(r.Context())})
	})
	r.Get("/api/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})
	return r
}

func TestMiddlewareChain_FullStack(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	rl := newTestRateLimiter(t, 1, 1)
	mc := &statusMetrics{}
	router := newChainRouter(logger, rl, mc)

	req := httptest.NewRequest(http.MethodGet, "/api/now", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["request_id"] == "" || body["request_id"] != w.Header().Get(RequestIDHeader) {
		t.Errorf("request_id in body %q does not match header %q", body["request_id"], w.Header().Get(RequestIDHeader))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("CORS headers missing")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v\nraw: %s", err, logBuf.String())
	}
	if entry["request_id"] != body["request_id"] {
		t.Errorf("logged request_id = %v, want %q", entry["request_id"], body["request_id"])
	}

	// 同じ転送元IPからの2回目は429になり、メトリクスにも記録される
	req = httptest.NewRequest(http.MethodGet, "/api/now", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
	if len(mc.statuses) != 2 || mc.statuses[1] != http.StatusTooManyRequests {
		t.Errorf("recorded statuses = %v, want [200 429]", mc.statuses)
	}
}

func TestMiddlewareChain_PanicReturns500WithRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	rl := newTestRateLimiter(t, 10, 10)
	router := newChainRouter(slog.New(slog.NewJSONHandler(&logBuf, nil)), rl, &statusMetrics{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("request ID header should be set before the panic")
	}
}

func TestMiddlewareChain_PreflightSkipsHandler(t *testing.T) {
	rl := newTestRateLimiter(t, 10, 10)
	router := newChainRouter(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)), rl, &statusMetrics{})

	req := httptest.NewRequest(http.MethodOptions, "/api/now", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
