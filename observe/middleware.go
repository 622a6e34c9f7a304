package observe

import (
	"context"
	"time"
)

// LoadResult describes how a load concluded for telemetry purposes.
// State is the delivery state (delivered, suppressed, failed) and Source
// names what produced the image (memory, disk, network, none).
type LoadResult struct {
	State  string
	Source string
}

// LoadFunc is the signature for image load functions.
// This is the standard function signature that Middleware wraps.
type LoadFunc func(ctx context.Context, load LoadMeta) (LoadResult, error)

// Middleware wraps image loads with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe LoadFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Results are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a LoadFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn LoadFunc) LoadFunc {
	return func(ctx context.Context, load LoadMeta) (LoadResult, error) {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, load)

		// Record start time
		start := time.Now()

		// Execute the load
		result, err := fn(ctx, load)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordLoad(ctx, load, duration, result.Source, err)

		// Log the load
		loadLogger := m.logger.WithLoad(load)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if result.State != "" {
			fields = append(fields, Field{Key: "state", Value: result.State})
		}
		if result.Source != "" {
			fields = append(fields, Field{Key: "source", Value: result.Source})
		}

		switch {
		case err != nil:
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			loadLogger.Error(ctx, "image load failed", fields...)
		case result.State == "suppressed":
			// A suppressed load is routine churn (the target moved on),
			// not an event worth surfacing above debug.
			loadLogger.Debug(ctx, "image load suppressed", fields...)
		default:
			loadLogger.Info(ctx, "image load completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := NewTracer(obs.Tracer())

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
