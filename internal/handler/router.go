package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/datecalc/internal/metrics"
	"github.com/hitoshi/datecalc/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector

	// ヘルスチェック（nilの場合はDB確認なし）
	HealthChecker HealthChecker

	// /metrics の公開元（nilの場合はルートを登録しない）
	Gatherer prometheus.Gatherer

	// 計算
	CalcService CalcServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Recovery → RequestID → Logging → Metrics → SecurityHeaders → CORS → RateLimit(/api/*のみ)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.NopCollector{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- レート制限対象外のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	calcHandler := NewCalcHandler(deps.CalcService)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Post("/epoch", calcHandler.Epoch)
		r.Post("/difference", calcHandler.Difference)
		r.Post("/since", calcHandler.Since)
		r.Get("/now", calcHandler.Now)
		r.Get("/calendar/{year}/{month}", calcHandler.Calendar)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", calcHandler.History)
			r.Get("/{id}", calcHandler.GetCalculation)
		})
	})

	return r
}
