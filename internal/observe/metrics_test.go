package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_CreatesEveryInstrument(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	m.RecordStage(ctx, "s0_probe", 0.012)
	m.RecordProviderRequest(ctx, "cloud", "chat", "ok")
	m.RecordProviderError(ctx, "cloud", "chat")
	m.RecordCacheLookup(ctx, "hit")
	m.RecordResolverCall(ctx, "area", "resolved")
	m.RecordCapabilityTurn(ctx, "timer", "start")
	m.RecordCircuitBreakerTrip(ctx, "cloud-llm")
	m.PendingActive.Add(ctx, 1)

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))
	require.NotEmpty(t, data.ScopeMetrics)

	var names []string
	for _, sm := range data.ScopeMetrics {
		for _, metric := range sm.Metrics {
			names = append(names, metric.Name)
		}
	}
	assert.Contains(t, names, "assist.stage.duration")
	assert.Contains(t, names, "assist.provider.requests")
	assert.Contains(t, names, "assist.provider.errors")
	assert.Contains(t, names, "assist.cache.lookups")
	assert.Contains(t, names, "assist.resolver.calls")
	assert.Contains(t, names, "assist.capability.turns")
	assert.Contains(t, names, "assist.circuitbreaker.trips")
	assert.Contains(t, names, "assist.pending.active")
}

func TestDefaultMetrics_IsAStableSingleton(t *testing.T) {
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}

func TestAttr(t *testing.T) {
	kv := Attr("stage", "s1_cache")
	assert.Equal(t, "stage", string(kv.Key))
	assert.Equal(t, "s1_cache", kv.Value.AsString())
}
