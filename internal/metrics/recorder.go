package metrics

import (
	"context"
	"time"
)

// Expansion describes one suggest pass.
type Expansion struct {
	Slots       int
	Depth       int
	Suggestions int
	ByRule      map[string]int
	Duration    time.Duration
}

// Recorder fans each observation out to the configured sinks. Any sink may be
// nil, and a nil Recorder records nothing.
type Recorder struct {
	Sentry     *SentryMetrics
	CloudWatch *Client
	Prometheus *Prometheus
}

func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	r.CloudWatch.RecordAPIRequest(endpoint, statusCode, duration)
	if r.Prometheus != nil {
		r.Prometheus.RecordAPIRequest(endpoint, statusCode)
	}
}

// StartExpansion opens a tracing span around a suggest pass. The returned
// context carries it; call finish once the pass is over.
func (r *Recorder) StartExpansion(ctx context.Context, slots, depth int) (context.Context, func()) {
	if r == nil || r.Sentry == nil || !r.Sentry.enabled {
		return ctx, func() {}
	}
	span := r.Sentry.StartExpansion(ctx, slots, depth)
	return span.Context(), span.Finish
}

func (r *Recorder) RecordExpansion(ctx context.Context, e Expansion) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordExpansion(ctx, e.Slots, e.Depth, e.Suggestions, e.Duration)
	}
	r.CloudWatch.RecordExpansion(e.Slots, e.Depth, e.Suggestions, e.Duration)
	if r.Prometheus != nil {
		r.Prometheus.RecordExpansion(e.ByRule, e.Duration)
	}
}

func (r *Recorder) RecordParseFailure(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	if r.Sentry != nil {
		r.Sentry.RecordParseFailure(ctx, kind)
	}
	r.CloudWatch.RecordParseFailure(kind)
	if r.Prometheus != nil {
		r.Prometheus.RecordParseFailure(kind)
	}
}
