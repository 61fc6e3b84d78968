// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はゲームとHTTPのPrometheusメトリクスを収集する。
// game.MetricsRecorderを実装する。
type Collector struct {
	gamesStarted    prometheus.Counter
	gamesStopped    prometheus.Counter
	scoredAttempts  prometheus.Counter
	sessionsExpired prometheus.Counter
	deviation       prometheus.Histogram
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timestop_games_started_total",
			Help: "開始されたゲームセッションの合計数",
		}),
		gamesStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timestop_games_stopped_total",
			Help: "正常に停止されたゲームセッションの合計数",
		}),
		scoredAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timestop_scored_attempts_total",
			Help: "得点となった試行の合計数",
		}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timestop_sessions_expired_total",
			Help: "停止時に期限切れを検出したセッションの合計数",
		}),
		deviation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timestop_deviation_milliseconds",
			Help:    "目標時間との偏差（ミリ秒）",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timestop_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.gamesStarted,
		c.gamesStopped,
		c.scoredAttempts,
		c.sessionsExpired,
		c.deviation,
		c.httpStatus,
	)

	return c
}

// RecordGameStarted はゲーム開始を記録する。
func (c *Collector) RecordGameStarted() {
	c.gamesStarted.Inc()
}

// RecordGameStopped はゲーム停止と偏差を記録する。
func (c *Collector) RecordGameStopped(deviationMs int64, scored bool) {
	c.gamesStopped.Inc()
	c.deviation.Observe(float64(deviationMs))
	if scored {
		c.scoredAttempts.Inc()
	}
}

// RecordSessionExpired はセッション期限切れの検出を記録する。
func (c *Collector) RecordSessionExpired() {
	c.sessionsExpired.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
