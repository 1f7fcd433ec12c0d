package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus holds the scrape-side counters. Each instance owns its registry
// so several routers can coexist in one process.
type Prometheus struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	expansion   prometheus.Histogram
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jazzgrammar_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"endpoint", "status"},
		),
		suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jazzgrammar_suggestions_total",
				Help: "Suggestions returned, by rule",
			},
			[]string{"rule"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jazzgrammar_rejected_progressions_total",
				Help: "Rejected requests by error kind",
			},
			[]string{"kind"},
		),
		expansion: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jazzgrammar_expansion_duration_seconds",
				Help:    "Time spent expanding one progression",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	p.registry.MustRegister(
		p.requests,
		p.suggestions,
		p.failures,
		p.expansion,
		collectors.NewGoCollector(),
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) RecordAPIRequest(endpoint string, statusCode int) {
	p.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

func (p *Prometheus) RecordExpansion(byRule map[string]int, duration time.Duration) {
	for rule, n := range byRule {
		p.suggestions.WithLabelValues(rule).Add(float64(n))
	}
	p.expansion.Observe(duration.Seconds())
}

func (p *Prometheus) RecordParseFailure(kind string) {
	p.failures.WithLabelValues(kind).Inc()
}
