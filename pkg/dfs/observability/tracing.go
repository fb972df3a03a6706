package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("dfs")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvalSpan starts a span for one expression evaluation.
	StartEvalSpan(ctx context.Context, evalID, expression string) (context.Context, trace.Span)

	// StartSelectSpan starts a span for case selection. Per-case
	// evaluation spans are its children.
	StartSelectSpan(ctx context.Context, evalID, intent string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartEvalSpan(ctx context.Context, evalID, expression string) (context.Context, trace.Span) {
	return StartEvalSpan(ctx, evalID, expression)
}

func (m *otelSpanManager) StartSelectSpan(ctx context.Context, evalID, intent string) (context.Context, trace.Span) {
	return StartSelectSpan(ctx, evalID, intent)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartEvalSpan starts an evaluation span on the global tracer.
func StartEvalSpan(ctx context.Context, evalID, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dfs.eval",
		trace.WithAttributes(
			attribute.String("eval.id", evalID),
			attribute.String("eval.expression", expression),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSelectSpan starts a selection span on the global tracer.
func StartSelectSpan(ctx context.Context, evalID, intent string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dfs.select."+intent,
		trace.WithAttributes(
			attribute.String("eval.id", evalID),
			attribute.String("dialog.intent", intent),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
