package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestAppMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSearch(ctx, "curated", 15*time.Millisecond)
	m.RecordCache(ctx, "memory", true)
	m.RecordCache(ctx, "memory", false)
	m.RecordFallback(ctx, "info", "generic")
	m.RecordProviderCall(ctx, "places", "geocode", time.Millisecond, errors.New("boom"))
	m.RecordProviderCall(ctx, "places", "geocode", time.Millisecond, nil)

	got := collect(t, reader)

	cache, ok := got["cache_lookups_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range cache.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Len(t, cache.DataPoints, 2, "hit and miss are separate series")

	errs, ok := got["provider_errors_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)

	assert.Contains(t, got, "search_duration_seconds")
	assert.Contains(t, got, "fallback_tier_total")
}

func TestAppMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *AppMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordSearch(ctx, "ai", time.Second)
		m.RecordCache(ctx, "redis", false)
		m.RecordFallback(ctx, "points", "curated")
		m.RecordProviderCall(ctx, "gemini", "generate", time.Second, nil)
	})
}
