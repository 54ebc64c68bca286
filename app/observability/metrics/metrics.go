package metrics

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// All Record helpers are safe on a nil receiver so components can run without metrics.
type AppMetrics struct {
	SearchRequestsTotal         metric.Int64Counter
	SearchDurationSeconds       metric.Float64Histogram
	CacheLookupsTotal           metric.Int64Counter
	FallbackTierTotal           metric.Int64Counter
	ProviderCallDurationSeconds metric.Float64Histogram
	ProviderErrorsTotal         metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates every instrument on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.SearchRequestsTotal, err = meter.Int64Counter(
		"search_requests_total",
		metric.WithDescription("Total number of destination searches completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating search_requests_total: %w", err)
	}

	m.SearchDurationSeconds, err = meter.Float64Histogram(
		"search_duration_seconds",
		metric.WithDescription("Duration of destination searches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating search_duration_seconds: %w", err)
	}

	m.CacheLookupsTotal, err = meter.Int64Counter(
		"cache_lookups_total",
		metric.WithDescription("Cache lookups by tier and result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache_lookups_total: %w", err)
	}

	m.FallbackTierTotal, err = meter.Int64Counter(
		"fallback_tier_total",
		metric.WithDescription("Which fallback tier produced the data for a lookup path"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fallback_tier_total: %w", err)
	}

	m.ProviderCallDurationSeconds, err = meter.Float64Histogram(
		"provider_call_duration_seconds",
		metric.WithDescription("Duration of outbound provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider_call_duration_seconds: %w", err)
	}

	m.ProviderErrorsTotal, err = meter.Int64Counter(
		"provider_errors_total",
		metric.WithDescription("Total number of failed outbound provider calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider_errors_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("PoiDiscovery"))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

func (m *AppMetrics) RecordSearch(ctx context.Context, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.SearchRequestsTotal.Add(ctx, 1, attrs)
	m.SearchDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordCache counts a lookup; tier is "memory" or "redis".
func (m *AppMetrics) RecordCache(ctx context.Context, tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("result", result),
	))
}

func (m *AppMetrics) RecordFallback(ctx context.Context, path, tier string) {
	if m == nil {
		return
	}
	m.FallbackTierTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("tier", tier),
	))
}

func (m *AppMetrics) RecordProviderCall(ctx context.Context, provider, operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	)
	m.ProviderCallDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.ProviderErrorsTotal.Add(ctx, 1, attrs)
	}
}
