package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	storeMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_store_mutations_total",
		Help: "Resume store mutations by operation.",
	}, []string{"operation"})

	persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_store_persist_failures_total",
		Help: "Snapshots that could not be written.",
	})

	aiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_ai_requests_total",
		Help: "AI generate and parse requests by kind and outcome.",
	}, []string{"kind", "outcome"})

	aiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_ai_duration_ms",
		Help:    "AI request duration in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	}, []string{"kind"})

	imports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_imports_total",
		Help: "Resume file imports by outcome.",
	}, []string{"outcome"})

	exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_exports_total",
		Help: "Resume exports by format and outcome.",
	}, []string{"format", "outcome"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter by group.",
	}, []string{"group"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		storeMutations,
		persistFailures,
		aiRequests,
		aiDuration,
		imports,
		exports,
		rateLimited,
		httpDuration,
	)
}

// IncStoreMutation counts one store operation.
func IncStoreMutation(operation string) {
	storeMutations.WithLabelValues(operation).Inc()
}

func IncPersistFailure() {
	persistFailures.Inc()
}

// ObserveAI records one AI call. outcome is "ok" or an error class.
func ObserveAI(kind, outcome string, d time.Duration) {
	aiRequests.WithLabelValues(kind, outcome).Inc()
	aiDuration.WithLabelValues(kind).Observe(float64(d.Milliseconds()))
}

func IncImport(outcome string) {
	imports.WithLabelValues(outcome).Inc()
}

func IncExport(format, outcome string) {
	exports.WithLabelValues(format, outcome).Inc()
}

func IncRateLimited(group string) {
	rateLimited.WithLabelValues(group).Inc()
}

// Middleware records request latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, statusClass(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
