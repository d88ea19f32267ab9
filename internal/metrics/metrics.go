package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digikul",
		Name:      "logins_total",
		Help:      "Login attempts by claimed role and result.",
	}, []string{"role", "result"})

	FaceCaptures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digikul",
		Name:      "face_captures_total",
		Help:      "Face capture operations by operation and result.",
	}, []string{"operation", "result"})

	FramesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "digikul",
		Name:      "frames_scanned_total",
		Help:      "Frames pulled from a source and checked for a face.",
	})

	LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digikul",
		Name:      "ledger_entries_total",
		Help:      "Append-only entries written, by collection.",
	}, []string{"collection"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digikul",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	}, []string{"scope"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "digikul",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Gin records request latency per matched route.
func Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
