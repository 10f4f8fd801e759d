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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(statusCode int, duration time.Duration)
	RecordRecipeWrite(op string)
	RecordRelationChange(kind, op string)
	RecordSubscriptionChange(op string)
	RecordShoppingListDownload(lines int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        prometheus.Histogram
	recipesWritten      *prometheus.CounterVec
	relationChanges     *prometheus.CounterVec
	subscriptionChanges *prometheus.CounterVec
	shoppingDownloads   prometheus.Counter
	shoppingLines       prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_http_requests_total",
			Help: "HTTPステータスコード別のリクエスト数",
		}, []string{"status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipebox_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recipesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_recipes_written_total",
			Help: "操作別のレシピ書き込み数",
		}, []string{"op"}),
		relationChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_relation_changes_total",
			Help: "お気に入り・買い物リストの追加と解除の数",
		}, []string{"kind", "op"}),
		subscriptionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipebox_subscription_changes_total",
			Help: "フォローとフォロー解除の数",
		}, []string{"op"}),
		shoppingDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipebox_shopping_list_downloads_total",
			Help: "買い物リストのダウンロード数",
		}),
		shoppingLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipebox_shopping_list_lines",
			Help:    "ダウンロードされた買い物リストの行数",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.recipesWritten,
		c.relationChanges,
		c.subscriptionChanges,
		c.shoppingDownloads,
		c.shoppingLines,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストのステータスコードと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpDuration.Observe(duration.Seconds())
}

// RecordRecipeWrite はレシピの作成・更新・削除を記録する。
func (c *Collector) RecordRecipeWrite(op string) {
	c.recipesWritten.WithLabelValues(op).Inc()
}

// RecordRelationChange はリレーションの追加・解除を記録する。
func (c *Collector) RecordRelationChange(kind, op string) {
	c.relationChanges.WithLabelValues(kind, op).Inc()
}

// RecordSubscriptionChange はフォロー・フォロー解除を記録する。
func (c *Collector) RecordSubscriptionChange(op string) {
	c.subscriptionChanges.WithLabelValues(op).Inc()
}

// RecordShoppingListDownload は買い物リストのダウンロードと行数を記録する。
func (c *Collector) RecordShoppingListDownload(lines int) {
	c.shoppingDownloads.Inc()
	c.shoppingLines.Observe(float64(lines))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
