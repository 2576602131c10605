package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SyncFlushes counts dirty-course flushes.
	SyncFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courseboard",
		Subsystem: "sync",
		Name:      "flushes_total",
		Help:      "Total number of course flushes",
	})

	// SyncEmits counts successful per-recipient sync deliveries.
	SyncEmits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courseboard",
		Subsystem: "sync",
		Name:      "emits_total",
		Help:      "Total number of delivered sync payloads",
	})

	// SyncEmitFailures counts swallowed delivery failures.
	SyncEmitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courseboard",
		Subsystem: "sync",
		Name:      "emit_failures_total",
		Help:      "Total number of failed sync deliveries",
	})

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "courseboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// Middleware records request durations by method and status.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestDuration.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
