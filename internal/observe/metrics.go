package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all resolver metrics.
const meterName = "github.com/kr0ner/multistage-assist"

// Metrics holds all OpenTelemetry metric instruments for the resolver.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// StageDuration tracks how long each cascade stage (S0-S3) takes to
	// process an utterance. Use with attribute.String("stage", stage.Name()).
	StageDuration metric.Float64Histogram

	// ProviderRequests counts outbound provider API calls. Use with
	// attributes: attribute.String("provider", ...), attribute.String("kind", ...),
	// attribute.String("status", ...).
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	// attribute.String("provider", ...), attribute.String("kind", ...).
	ProviderErrors metric.Int64Counter

	// CacheLookups counts semantic cache lookups. Use with
	// attribute.String("result", "hit"|"miss"|"disambiguate").
	CacheLookups metric.Int64Counter

	// ResolverCalls counts area/floor/entity resolver invocations. Use with
	// attributes: attribute.String("kind", "area"|"floor"|"entity"),
	// attribute.String("result", "resolved"|"ambiguous"|"unresolved").
	ResolverCalls metric.Int64Counter

	// CapabilityTurns counts multi-turn capability Start/Continue calls.
	// Use with attributes: attribute.String("capability", ...),
	// attribute.String("step", "start"|"continue").
	CapabilityTurns metric.Int64Counter

	// CircuitBreakerTrips counts circuit breaker state transitions into the
	// open state. Use with attribute.String("breaker", ...).
	CircuitBreakerTrips metric.Int64Counter

	// PendingActive tracks the number of conversations currently holding
	// multi-turn pending state in the orchestrator.
	PendingActive metric.Int64UpDownCounter
}

// stageLatencyBuckets defines histogram bucket boundaries (in seconds)
// suited to text-only cascade stages: rule-based probes resolve in single
// milliseconds, LLM-backed stages take hundreds of milliseconds to seconds.
var stageLatencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("assist.stage.duration",
		metric.WithDescription("Latency of a single cascade stage processing one utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("assist.provider.requests",
		metric.WithDescription("Outbound requests to LLM/embedding/rerank providers."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("assist.provider.errors",
		metric.WithDescription("Provider request failures."),
	); err != nil {
		return nil, err
	}
	if met.CacheLookups, err = m.Int64Counter("assist.cache.lookups",
		metric.WithDescription("Semantic command cache lookups by result."),
	); err != nil {
		return nil, err
	}
	if met.ResolverCalls, err = m.Int64Counter("assist.resolver.calls",
		metric.WithDescription("Area/floor/entity resolver invocations by tier and result."),
	); err != nil {
		return nil, err
	}
	if met.CapabilityTurns, err = m.Int64Counter("assist.capability.turns",
		metric.WithDescription("Multi-turn capability Start/Continue invocations."),
	); err != nil {
		return nil, err
	}
	if met.CircuitBreakerTrips, err = m.Int64Counter("assist.circuitbreaker.trips",
		metric.WithDescription("Circuit breaker transitions into the open state."),
	); err != nil {
		return nil, err
	}
	if met.PendingActive, err = m.Int64UpDownCounter("assist.pending.active",
		metric.WithDescription("Conversations currently holding multi-turn pending state."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordStage records one cascade stage's processing duration in seconds.
func (m *Metrics) RecordStage(ctx context.Context, stage string, seconds float64) {
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordProviderRequest is a convenience method that records a provider
// request counter increment with the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordCacheLookup records a semantic cache lookup outcome.
func (m *Metrics) RecordCacheLookup(ctx context.Context, result string) {
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordResolverCall records an area/floor/entity resolver invocation.
func (m *Metrics) RecordResolverCall(ctx context.Context, kind, result string) {
	m.ResolverCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("result", result),
		),
	)
}

// RecordCapabilityTurn records a multi-turn capability Start or Continue call.
func (m *Metrics) RecordCapabilityTurn(ctx context.Context, capability, step string) {
	m.CapabilityTurns.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("capability", capability),
			attribute.String("step", step),
		),
	)
}

// RecordCircuitBreakerTrip records a circuit breaker opening.
func (m *Metrics) RecordCircuitBreakerTrip(ctx context.Context, breaker string) {
	m.CircuitBreakerTrips.Add(ctx, 1, metric.WithAttributes(attribute.String("breaker", breaker)))
}
