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
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillsage",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillsage",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	aiCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillsage",
		Name:      "ai_calls_total",
		Help:      "Outbound language-model and speech calls by kind and outcome",
	}, []string{"kind", "outcome"})

	aiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillsage",
		Name:      "ai_call_duration_seconds",
		Help:      "Duration of outbound language-model and speech calls",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"kind"})

	interviewsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skillsage",
		Name:      "interviews_completed_total",
		Help:      "Sessions whose last question was answered",
	})
)

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		httpLatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }

// ObserveAICall records one outbound call; outcome is a status or error code.
func ObserveAICall(kind, outcome string, d time.Duration) {
	aiCalls.WithLabelValues(kind, outcome).Inc()
	aiLatency.WithLabelValues(kind).Observe(d.Seconds())
}

func InterviewCompleted() { interviewsCompleted.Inc() }
