package main

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/randalmurphal/dfs/pkg/dfs/config"
)

// telemetry installs in-process OTel providers for a CLI run. Spans are
// logged as they end; metrics are collected once and logged at shutdown.
type telemetry struct {
	logger *slog.Logger
	reader *sdkmetric.ManualReader
	meters *sdkmetric.MeterProvider
	tracer *sdktrace.TracerProvider
}

// setupTelemetry returns nil when the settings enable neither metrics nor
// tracing. The engine then uses no-op recorders.
func setupTelemetry(s config.Settings, logger *slog.Logger) *telemetry {
	if !s.Metrics && !s.Tracing {
		return nil
	}
	t := &telemetry{logger: logger}
	if s.Metrics {
		t.reader = sdkmetric.NewManualReader()
		t.meters = sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))
		otel.SetMeterProvider(t.meters)
	}
	if s.Tracing {
		t.tracer = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(&logSpanProcessor{logger: logger}),
		)
		otel.SetTracerProvider(t.tracer)
	}
	return t
}

// Shutdown logs collected metrics and stops both providers.
func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.reader != nil {
		var rm metricdata.ResourceMetrics
		if err := t.reader.Collect(ctx, &rm); err != nil {
			errs = append(errs, err)
		} else {
			logMetrics(t.logger, rm)
		}
		errs = append(errs, t.meters.Shutdown(ctx))
	}
	if t.tracer != nil {
		errs = append(errs, t.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func logMetrics(logger *slog.Logger, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				logger.Info("metric", slog.String("name", m.Name), slog.Int64("total", total))
			case metricdata.Histogram[float64]:
				var count uint64
				var sum float64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				logger.Info("metric",
					slog.String("name", m.Name),
					slog.Uint64("count", count),
					slog.Float64("sum", sum),
				)
			}
		}
	}
}

// logSpanProcessor writes each finished span to the logger.
type logSpanProcessor struct {
	logger *slog.Logger
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := []any{
		slog.String("name", s.Name()),
		slog.String("trace_id", s.SpanContext().TraceID().String()),
		slog.Float64("duration_ms", float64(s.EndTime().Sub(s.StartTime()).Microseconds())/1000),
	}
	if s.Status().Code == codes.Error {
		attrs = append(attrs, slog.String("error", s.Status().Description))
	}
	p.logger.Info("span", attrs...)
}

func (p *logSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
