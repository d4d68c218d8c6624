package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AnswersRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicfy_answers_recorded_total",
			Help: "Answer events persisted, by correctness",
		},
		[]string{"correct"},
	)

	XpGranted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logicfy_xp_granted_total",
			Help: "Sum of XP appended to the ledger",
		},
	)

	RollupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logicfy_rollup_duration_seconds",
			Help:    "Duration of a progress rollup per level",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"level"},
	)

	SideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicfy_side_effect_failures_total",
			Help: "Best-effort answer side effects that failed",
		},
		[]string{"step"},
	)

	RepairQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "logicfy_repair_queue_depth",
			Help: "Repair tasks waiting in the queue",
		},
	)

	RepairTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logicfy_repair_tasks_total",
			Help: "Repair tasks processed, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AnswersRecorded,
			XpGranted,
			RollupDuration,
			SideEffectFailures,
			RepairQueueDepth,
			RepairTasks,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// ObserveRollup 记录一次汇总耗时，配合 defer 使用
func ObserveRollup(level string) func() {
	start := time.Now()
	return func() {
		RollupDuration.WithLabelValues(level).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
