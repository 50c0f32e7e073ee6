package primitive

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of cache metrics.
const meterName = "github.com/born-ml/primcache/primitive"

// cacheMetrics records cache events as OpenTelemetry counters.
type cacheMetrics struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	builds      metric.Int64Counter
	buildErrors metric.Int64Counter
}

// newCacheMetrics creates the cache counters on the given meter.
func newCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	hits, err := meter.Int64Counter(
		"primitive.cache.hits",
		metric.WithDescription("Number of primitive cache lookups that found an entry"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"primitive.cache.misses",
		metric.WithDescription("Number of primitive cache lookups that found no entry"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	builds, err := meter.Int64Counter(
		"primitive.cache.builds",
		metric.WithDescription("Number of primitives constructed on a cache miss"),
		metric.WithUnit("{primitive}"),
	)
	if err != nil {
		return nil, err
	}

	buildErrors, err := meter.Int64Counter(
		"primitive.cache.build_errors",
		metric.WithDescription("Number of failed primitive constructions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		hits:        hits,
		misses:      misses,
		builds:      builds,
		buildErrors: buildErrors,
	}, nil
}

func familyAttr(key Key) metric.AddOption {
	return metric.WithAttributes(attribute.String("primitive.family", key.Family))
}

func (m *cacheMetrics) recordLookup(ctx context.Context, key Key, hit bool) {
	if hit {
		m.hits.Add(ctx, 1, familyAttr(key))
		return
	}
	m.misses.Add(ctx, 1, familyAttr(key))
}

func (m *cacheMetrics) recordBuild(ctx context.Context, key Key, err error) {
	if err != nil {
		m.buildErrors.Add(ctx, 1, familyAttr(key))
		return
	}
	m.builds.Add(ctx, 1, familyAttr(key))
}
