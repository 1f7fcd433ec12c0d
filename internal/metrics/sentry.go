package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and expansion spans on the current transaction
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped when Sentry is not initialised
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

const expansionOp = "grammar.suggest"

// StartExpansion opens the span that covers one suggest pass. Run the
// expansion with span.Context() so RecordExpansion can annotate it.
func (m *SentryMetrics) StartExpansion(ctx context.Context, slots, depth int) *sentry.Span {
	span := sentry.StartSpan(ctx, expansionOp)
	span.SetTag("depth", fmt.Sprintf("%d", depth))
	span.SetData("slots", slots)
	span.Description = fmt.Sprintf("Suggest: %d slots", slots)
	return span
}

// RecordExpansion tags the request transaction with the size of a suggest
// pass and annotates the span opened by StartExpansion, if ctx carries one.
func (m *SentryMetrics) RecordExpansion(ctx context.Context, slots, depth, suggestions int, duration time.Duration) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("grammar.depth", fmt.Sprintf("%d", depth))
		transaction.SetData("grammar.slots", slots)
		transaction.SetData("grammar.suggestions", suggestions)
	}

	if span := sentry.SpanFromContext(ctx); span != nil && span.Op == expansionOp {
		span.SetData("suggestions", suggestions)
		span.SetData("duration_ms", duration.Milliseconds())
		span.Status = sentry.SpanStatusOK
	}
}

// RecordParseFailure records a rejected progression by error kind.
func (m *SentryMetrics) RecordParseFailure(ctx context.Context, kind string) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "grammar.parse")
	defer span.Finish()

	span.SetTag("kind", kind)
	span.Status = sentry.SpanStatusInvalidArgument
	span.Description = "Parse failure: " + kind
}
