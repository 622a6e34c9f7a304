package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records the operational counters of the loader.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLoad records a completed image load with duration, the tier or
	// network source that produced the image, and error status.
	RecordLoad(ctx context.Context, meta LoadMeta, duration time.Duration, source string, err error)

	// RecordCacheLookup records a single cache tier lookup and its outcome.
	RecordCacheLookup(ctx context.Context, tier string, hit bool)

	// RecordFetch records a network fetch with duration, downloaded bytes,
	// and error status.
	RecordFetch(ctx context.Context, duration time.Duration, bytes int64, err error)

	// RecordSweep records the outcome of one expiration sweep.
	RecordSweep(ctx context.Context, deleted int, reclaimed int64)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	loadCount      metric.Int64Counter
	loadErrors     metric.Int64Counter
	loadDuration   metric.Float64Histogram
	cacheLookups   metric.Int64Counter
	fetchCount     metric.Int64Counter
	fetchErrors    metric.Int64Counter
	fetchDuration  metric.Float64Histogram
	fetchBytes     metric.Int64Histogram
	sweepDeleted   metric.Int64Counter
	sweepReclaimed metric.Int64Counter
}

// NewMetrics creates a Metrics instance with its instruments registered
// on the given meter. Instrument names are stable, so creating a second
// instance on the same meter reuses the existing instruments.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	loadCount, err := meter.Int64Counter(
		"image.load.total",
		metric.WithDescription("Total number of image load operations"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, err
	}

	loadErrors, err := meter.Int64Counter(
		"image.load.errors",
		metric.WithDescription("Total number of failed image loads"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"image.load.duration_ms",
		metric.WithDescription("Image load duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"image.cache.lookups",
		metric.WithDescription("Cache lookups by tier and outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	fetchCount, err := meter.Int64Counter(
		"image.fetch.total",
		metric.WithDescription("Total number of network fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	fetchErrors, err := meter.Int64Counter(
		"image.fetch.errors",
		metric.WithDescription("Total number of failed network fetches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"image.fetch.duration_ms",
		metric.WithDescription("Network fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	fetchBytes, err := meter.Int64Histogram(
		"image.fetch.bytes",
		metric.WithDescription("Bytes downloaded per successful fetch"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	sweepDeleted, err := meter.Int64Counter(
		"image.sweep.deleted",
		metric.WithDescription("Cache files deleted by the expiration sweeper"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	sweepReclaimed, err := meter.Int64Counter(
		"image.sweep.reclaimed_bytes",
		metric.WithDescription("Bytes reclaimed by the expiration sweeper"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		loadCount:      loadCount,
		loadErrors:     loadErrors,
		loadDuration:   loadDuration,
		cacheLookups:   cacheLookups,
		fetchCount:     fetchCount,
		fetchErrors:    fetchErrors,
		fetchDuration:  fetchDuration,
		fetchBytes:     fetchBytes,
		sweepDeleted:   sweepDeleted,
		sweepReclaimed: sweepReclaimed,
	}, nil
}

// RecordLoad records metrics for one image load.
func (m *metricsImpl) RecordLoad(ctx context.Context, meta LoadMeta, duration time.Duration, source string, err error) {
	// Build common attributes
	attrs := []attribute.KeyValue{}
	if source != "" {
		attrs = append(attrs, attribute.String("image.source", source))
	}
	if meta.Preview {
		attrs = append(attrs, attribute.Bool("load.preview", true))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.loadCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.loadErrors.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.loadDuration.Record(ctx, durationMs, opt)
}

// RecordCacheLookup records one cache tier lookup.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, tier string, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.tier", tier),
		attribute.Bool("cache.hit", hit),
	))
}

// RecordFetch records metrics for one network fetch.
func (m *metricsImpl) RecordFetch(ctx context.Context, duration time.Duration, bytes int64, err error) {
	m.fetchCount.Add(ctx, 1)

	if err != nil {
		m.fetchErrors.Add(ctx, 1)
	} else {
		m.fetchBytes.Record(ctx, bytes)
	}

	durationMs := float64(duration.Milliseconds())
	m.fetchDuration.Record(ctx, durationMs)
}

// RecordSweep records metrics for one expiration sweep.
func (m *metricsImpl) RecordSweep(ctx context.Context, deleted int, reclaimed int64) {
	m.sweepDeleted.Add(ctx, int64(deleted))
	m.sweepReclaimed.Add(ctx, reclaimed)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordLoad(ctx context.Context, meta LoadMeta, duration time.Duration, source string, err error) {
}

func (m *noopMetrics) RecordCacheLookup(ctx context.Context, tier string, hit bool) {}

func (m *noopMetrics) RecordFetch(ctx context.Context, duration time.Duration, bytes int64, err error) {
}

func (m *noopMetrics) RecordSweep(ctx context.Context, deleted int, reclaimed int64) {}
