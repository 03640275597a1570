package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metrics     *httpMetrics
)

// newHTTPMetrics registers the collectors once; every Server shares them so
// rebuilding the server (tests, reloads) never double-registers.
func newHTTPMetrics() *httpMetrics {
	metricsOnce.Do(func() {
		metrics = &httpMetrics{
			requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "comanda_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			}, []string{"route", "method", "status"}),
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "comanda_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
	})
	return metrics
}

func (m *httpMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
