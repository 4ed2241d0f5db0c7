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
// サービス層やワーカーから利用する。
type MetricsCollector interface {
	RecordDetectLatency(duration time.Duration)
	RecordChaptersDetected(count int)
	RecordFallbackDetection()
	RecordHighlightCreated()
	RecordTemplateGenerated(pass string)
	RecordHTTPStatus(statusCode int)
	RecordArticlesPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	detectLatency      prometheus.Histogram
	chaptersDetected   prometheus.Counter
	fallbackDetections prometheus.Counter
	highlightsCreated  prometheus.Counter
	templatesGenerated *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	articlesPurged     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		detectLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sandoku_chapter_detect_latency_seconds",
			Help:    "章検出のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		chaptersDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sandoku_chapters_detected_total",
			Help: "検出された章の合計数",
		}),
		fallbackDetections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sandoku_fallback_detections_total",
			Help: "見出しが見つからず全文フォールバックした検出の合計数",
		}),
		highlightsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sandoku_highlights_created_total",
			Help: "作成されたハイライトの合計数",
		}),
		templatesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sandoku_templates_generated_total",
			Help: "読書ステージ別の生成テンプレート数",
		}, []string{"pass"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sandoku_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		articlesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sandoku_articles_purged_total",
			Help: "保持期限切れで削除された記事の合計数",
		}),
	}

	reg.MustRegister(
		c.detectLatency,
		c.chaptersDetected,
		c.fallbackDetections,
		c.highlightsCreated,
		c.templatesGenerated,
		c.httpStatus,
		c.articlesPurged,
	)

	return c
}

// RecordDetectLatency は章検出のレイテンシを記録する。
func (c *Collector) RecordDetectLatency(duration time.Duration) {
	c.detectLatency.Observe(duration.Seconds())
}

// RecordChaptersDetected は検出された章数を記録する。
func (c *Collector) RecordChaptersDetected(count int) {
	c.chaptersDetected.Add(float64(count))
}

// RecordFallbackDetection は全文フォールバックの発生を記録する。
func (c *Collector) RecordFallbackDetection() {
	c.fallbackDetections.Inc()
}

// RecordHighlightCreated はハイライト作成を記録する。
func (c *Collector) RecordHighlightCreated() {
	c.highlightsCreated.Inc()
}

// RecordTemplateGenerated はテンプレート生成を読書ステージ別に記録する。
func (c *Collector) RecordTemplateGenerated(pass string) {
	c.templatesGenerated.WithLabelValues(pass).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordArticlesPurged は保持期限切れで削除された記事数を記録する。
func (c *Collector) RecordArticlesPurged(count int) {
	c.articlesPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop は何も記録しないコレクター。メトリクスが不要な場面で使用する。
type Noop struct{}

// RecordDetectLatency は何もしない。
func (Noop) RecordDetectLatency(duration time.Duration) {}

// RecordChaptersDetected は何もしない。
func (Noop) RecordChaptersDetected(count int) {}

// RecordFallbackDetection は何もしない。
func (Noop) RecordFallbackDetection() {}

// RecordHighlightCreated は何もしない。
func (Noop) RecordHighlightCreated() {}

// RecordTemplateGenerated は何もしない。
func (Noop) RecordTemplateGenerated(pass string) {}

// RecordHTTPStatus は何もしない。
func (Noop) RecordHTTPStatus(statusCode int) {}

// RecordArticlesPurged は何もしない。
func (Noop) RecordArticlesPurged(count int) {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Noop{}
)
