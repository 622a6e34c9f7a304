package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// LoadMeta contains metadata about an image load for telemetry purposes.
type LoadMeta struct {
	RequestID string // Per-load request identifier (optional)
	URL       string // Source URL of the image (required)
	Key       string // Cache key derived from the URL (optional)
	Preview   bool   // True when this load delivers a preview image
}

// SpanName returns the deterministic span name for this load.
// Format: image.load or image.load.preview
func (m LoadMeta) SpanName() string {
	if m.Preview {
		return "image.load.preview"
	}
	return "image.load"
}

// Validate checks that the metadata identifies a loadable image.
func (m LoadMeta) Validate() error {
	if m.URL == "" {
		return ErrMissingLoadURL
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with load-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an image load.
	StartSpan(ctx context.Context, meta LoadMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with load metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta LoadMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	// Build attributes
	attrs := []attribute.KeyValue{
		attribute.String("image.url", meta.URL),
		attribute.Bool("load.error", false), // Will be updated in EndSpan if error
	}

	// Add optional attributes if present
	if meta.RequestID != "" {
		attrs = append(attrs, attribute.String("request.id", meta.RequestID))
	}
	if meta.Key != "" {
		attrs = append(attrs, attribute.String("cache.key", meta.Key))
	}
	if meta.Preview {
		attrs = append(attrs, attribute.Bool("load.preview", true))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("load.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta LoadMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
