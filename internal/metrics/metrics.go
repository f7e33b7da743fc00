// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthRecorder は認証まわりのメトリクス記録インターフェース。
// 認証サービスから利用する。
type AuthRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	SetActiveSessions(count int)
}

// AgendaRecorder はアジェンダ生成まわりのメトリクス記録インターフェース。
type AgendaRecorder interface {
	RecordAgendaRequest()
	RecordAgendaFailure()
	RecordAgendaLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	activeSessions prometheus.Gauge
	agendaRequests prometheus.Counter
	agendaFail     prometheus.Counter
	agendaLatency  prometheus.Histogram
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventhub_sessions_active",
			Help: "現在アクティブなセッション数",
		}),
		agendaRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_agenda_requests_total",
			Help: "アジェンダ生成リクエストの合計数",
		}),
		agendaFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_agenda_fail_total",
			Help: "アジェンダ生成の上流API失敗の合計数",
		}),
		agendaLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventhub_agenda_latency_seconds",
			Help:    "アジェンダ生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.activeSessions,
		c.agendaRequests,
		c.agendaFail,
		c.agendaLatency,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// SetActiveSessions は現在のアクティブセッション数を記録する。
func (c *Collector) SetActiveSessions(count int) {
	c.activeSessions.Set(float64(count))
}

// RecordAgendaRequest はアジェンダ生成リクエストを記録する。
func (c *Collector) RecordAgendaRequest() {
	c.agendaRequests.Inc()
}

// RecordAgendaFailure は上流APIの失敗を記録する。
func (c *Collector) RecordAgendaFailure() {
	c.agendaFail.Inc()
}

// RecordAgendaLatency はアジェンダ生成のレイテンシを記録する。
func (c *Collector) RecordAgendaLatency(duration time.Duration) {
	c.agendaLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface checks
var _ AuthRecorder = (*Collector)(nil)
var _ AgendaRecorder = (*Collector)(nil)
