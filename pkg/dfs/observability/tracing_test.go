package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest installs an in-memory tracer provider for the test.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("dfs")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attr(s tracetest.SpanStub, key attribute.Key) string {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestSpanManager(t *testing.T) {
	tests := []struct {
		name     string
		start    func(SpanManager, context.Context) (context.Context, trace.Span)
		wantName string
		key      attribute.Key
		wantAttr string
	}{
		{
			name: "eval span",
			start: func(m SpanManager, ctx context.Context) (context.Context, trace.Span) {
				return m.StartEvalSpan(ctx, "eval-1", "1 + 1")
			},
			wantName: "dfs.eval",
			key:      "eval.expression",
			wantAttr: "1 + 1",
		},
		{
			name: "select span",
			start: func(m SpanManager, ctx context.Context) (context.Context, trace.Span) {
				return m.StartSelectSpan(ctx, "eval-1", "billing")
			},
			wantName: "dfs.select.billing",
			key:      "dialog.intent",
			wantAttr: "billing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := setupTracingTest(t)
			m := NewSpanManager()

			_, span := tt.start(m, context.Background())
			m.EndSpanWithError(span, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantName, spans[0].Name)
			assert.Equal(t, "eval-1", attr(spans[0], "eval.id"))
			assert.Equal(t, tt.wantAttr, attr(spans[0], tt.key))
			assert.Equal(t, codes.Ok, spans[0].Status.Code)
		})
	}
}

func TestEvalSpanIsChildOfSelectSpan(t *testing.T) {
	exporter := setupTracingTest(t)

	ctx, parent := StartSelectSpan(context.Background(), "eval-1", "billing")
	_, child := StartEvalSpan(ctx, "eval-1", "true")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestEndSpanWithError(t *testing.T) {
	exporter := setupTracingTest(t)

	_, span := StartEvalSpan(context.Background(), "eval-1", "x")
	EndSpanWithError(span, errors.New("unknown identifier x"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "unknown identifier x", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	assert.NotPanics(t, func() { EndSpanWithError(nil, nil) })
}

func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)

	ctx, span := StartSelectSpan(context.Background(), "eval-1", "billing")
	AddSpanEvent(ctx, "case.failed", attribute.Int("case", 0))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "case.failed", spans[0].Events[0].Name)

	assert.NotPanics(t, func() { AddSpanEvent(context.Background(), "orphan") })
}
