package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// MetricsRecorder records dfs metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records one expression evaluation. resultKind is the
	// kind of the produced value and is ignored when err is non-nil.
	RecordEvaluation(ctx context.Context, resultKind string, duration time.Duration, err error)

	// RecordSelection records one case selection for an intent.
	RecordSelection(ctx context.Context, intent string, matched bool, duration time.Duration)

	// RecordCaseError records a case condition that failed to evaluate.
	RecordCaseError(ctx context.Context, intent string, err error)
}

type otelMetrics struct {
	evaluations   metric.Int64Counter
	evalLatency   metric.Float64Histogram
	evalErrors    metric.Int64Counter
	selections    metric.Int64Counter
	selectLatency metric.Float64Histogram
	caseErrors    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("dfs")

	evaluations, err := meter.Int64Counter("dfs.eval.count",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("dfs.eval.latency_ms",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("dfs.eval.errors",
		metric.WithDescription("Number of failed expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	selections, err := meter.Int64Counter("dfs.select.count",
		metric.WithDescription("Number of case selections"),
	)
	if err != nil {
		return nil, err
	}

	selectLatency, err := meter.Float64Histogram("dfs.select.latency_ms",
		metric.WithDescription("Case selection latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	caseErrors, err := meter.Int64Counter("dfs.select.case_errors",
		metric.WithDescription("Number of case conditions that failed to evaluate"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		evaluations:   evaluations,
		evalLatency:   evalLatency,
		evalErrors:    evalErrors,
		selections:    selections,
		selectLatency: selectLatency,
		caseErrors:    caseErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, resultKind string, duration time.Duration, err error) {
	success := err == nil
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	if success {
		attrs = append(attrs, attribute.String("result_kind", resultKind))
	}

	m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.evalLatency.Record(ctx, ms(duration), metric.WithAttributes(attribute.Bool("success", success)))

	if err != nil {
		m.evalErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error_kind", dfserrors.Categorize(err).String()),
		))
	}
}

// RecordSelection records a case selection.
func (m *otelMetrics) RecordSelection(ctx context.Context, intent string, matched bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("intent", intent),
		attribute.Bool("matched", matched),
	}
	m.selections.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.selectLatency.Record(ctx, ms(duration), metric.WithAttributes(attrs...))
}

// RecordCaseError records a failed case condition.
func (m *otelMetrics) RecordCaseError(ctx context.Context, intent string, err error) {
	m.caseErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("error_kind", dfserrors.Categorize(err).String()),
	))
}
