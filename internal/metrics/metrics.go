// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 計算サービス、HTTPミドルウェア、クリーンアップジョブから利用する。
type MetricsCollector interface {
	RecordConversion(cached bool)
	RecordDifference(negative bool)
	RecordValidationFailure()
	RecordHTTPStatus(statusCode int)
	RecordCalculationLatency(duration time.Duration)
	RecordHistorySaved()
	RecordHistoryDeleted(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	conversions        *prometheus.CounterVec
	differences        *prometheus.CounterVec
	validationFailures prometheus.Counter
	httpStatus         *prometheus.CounterVec
	calcLatency        prometheus.Histogram
	historySaved       prometheus.Counter
	historyDeleted     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datecalc_conversions_total",
			Help: "通算秒数への変換回数（キャッシュヒット別）",
		}, []string{"cached"}),
		differences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datecalc_differences_total",
			Help: "日時差の計算回数（符号別）",
		}, []string{"sign"}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datecalc_validation_failures_total",
			Help: "厳格検証で拒否された日時の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datecalc_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		calcLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "datecalc_calculation_latency_seconds",
			Help:    "日時差計算のレイテンシ（秒）",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		historySaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datecalc_history_saved_total",
			Help: "保存された計算履歴の合計数",
		}),
		historyDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datecalc_history_deleted_total",
			Help: "保持期間切れで削除された計算履歴の合計数",
		}),
	}

	reg.MustRegister(
		c.conversions,
		c.differences,
		c.validationFailures,
		c.httpStatus,
		c.calcLatency,
		c.historySaved,
		c.historyDeleted,
	)

	return c
}

// RecordConversion は通算秒数への変換を記録する。
func (c *Collector) RecordConversion(cached bool) {
	c.conversions.WithLabelValues(strconv.FormatBool(cached)).Inc()
}

// RecordDifference は日時差の計算を記録する。
func (c *Collector) RecordDifference(negative bool) {
	sign := "non_negative"
	if negative {
		sign = "negative"
	}
	c.differences.WithLabelValues(sign).Inc()
}

// RecordValidationFailure は検証失敗を記録する。
func (c *Collector) RecordValidationFailure() {
	c.validationFailures.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCalculationLatency は計算のレイテンシを記録する。
func (c *Collector) RecordCalculationLatency(duration time.Duration) {
	c.calcLatency.Observe(duration.Seconds())
}

// RecordHistorySaved は計算履歴の保存を記録する。
func (c *Collector) RecordHistorySaved() {
	c.historySaved.Inc()
}

// RecordHistoryDeleted は削除された計算履歴の件数を記録する。
func (c *Collector) RecordHistoryDeleted(count int64) {
	c.historyDeleted.Add(float64(count))
}

// NopCollector は何も記録しないMetricsCollector。CLIとテストで使う。
type NopCollector struct{}

func (NopCollector) RecordConversion(bool)                  {}
func (NopCollector) RecordDifference(bool)                  {}
func (NopCollector) RecordValidationFailure()               {}
func (NopCollector) RecordHTTPStatus(int)                   {}
func (NopCollector) RecordCalculationLatency(time.Duration) {}
func (NopCollector) RecordHistorySaved()                    {}
func (NopCollector) RecordHistoryDeleted(int64)             {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// 一部のメトリクス収集に失敗しても残りを返し、Acceptヘッダーに応じてOpenMetrics形式でも応答する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}
