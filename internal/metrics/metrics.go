package metrics

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Private registry: keeps the scrape surface to our own series plus nothing
// inherited from the default registry.
var registry = prometheus.NewRegistry()

var (
	HTTPRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "cv_analyzer_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	Analyses = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "cv_analyzer_analyses_total",
		Help: "Finished analyses by outcome.",
	}, []string{"outcome"})

	AnalysisDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "cv_analyzer_analysis_duration_seconds",
		Help:    "End-to-end analysis latency.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
	})

	AgentRetries = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "cv_analyzer_agent_retries_total",
		Help: "Scheduled retries of the upstream agent call.",
	})

	AgentTimeouts = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "cv_analyzer_agent_timeouts_total",
		Help: "Analyses abandoned at the hard deadline.",
	})

	AdmissionRejections = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "cv_analyzer_admission_rejections_total",
		Help: "Requests rejected by the concurrency limiter.",
	})
)

// RegisterQueueDepth exposes the indexer queue depth as a live gauge. Call it
// once at boot.
func RegisterQueueDepth(depth func() int) {
	promauto.With(registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cv_analyzer_indexer_queue_depth",
		Help: "Jobs waiting in the profile indexer queue.",
	}, func() float64 {
		return float64(depth())
	})
}

// NewRequestRecorder counts every request by route pattern, so path
// parameters do not explode label cardinality.
func NewRequestRecorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

// Serve exposes /metrics on its own listener, keeping the scrape surface off
// the public API port.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		addr := fmt.Sprintf(":%s", port)
		log.Printf("📊 Metrics listening on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️  Metrics server stopped: %v", err)
		}
	}()
}
