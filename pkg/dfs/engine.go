package dfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/dfs/pkg/dfs/builtins"
	"github.com/randalmurphal/dfs/pkg/dfs/config"
	"github.com/randalmurphal/dfs/pkg/dfs/expr"
	"github.com/randalmurphal/dfs/pkg/dfs/observability"
	"github.com/randalmurphal/dfs/pkg/dfs/template"
)

// ErrNilSpec is returned when an engine method receives a nil *Spec.
var ErrNilSpec = errors.New("spec is nil")

// Engine evaluates conditions and selects cases for specs. It holds the
// function library, the parse cache and the telemetry hooks; specs carry
// only data. An Engine is safe for concurrent use.
type Engine struct {
	settings  config.Settings
	evaluator *expr.Evaluator
	expander  *template.Expander
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	newID     func() string
}

type engineConfig struct {
	logger  *slog.Logger
	clock   builtins.Clock
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	extend  []func(*expr.Library)
}

// Option configures NewEngine.
type Option func(*engineConfig)

// WithLogger sets the engine logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock pins the clock read by the date builtins.
//
//	engine, _ := dfs.NewEngine(settings, dfs.WithClock(builtins.FixedClock(t)))
func WithClock(clock builtins.Clock) Option {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithMetrics overrides the recorder chosen from Settings.Metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager overrides the span manager chosen from Settings.Tracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *engineConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithLibrary runs fn on the engine's library after the builtins are
// registered. Use it to add host functions or constants.
func WithLibrary(fn func(*expr.Library)) Option {
	return func(c *engineConfig) {
		if fn != nil {
			c.extend = append(c.extend, fn)
		}
	}
}

// NewEngine builds an engine from settings.
func NewEngine(s config.Settings, opts ...Option) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = observability.NoopMetrics{}
		if s.Metrics {
			cfg.metrics = observability.NewMetricsRecorder()
		}
	}
	if cfg.spans == nil {
		cfg.spans = observability.NoopSpanManager{}
		if s.Tracing {
			cfg.spans = observability.NewSpanManager()
		}
	}

	lib := builtins.NewLibrary(
		builtins.WithGroups(builtins.Groups{
			Maths:       s.Builtins.Maths,
			Datetime:    s.Builtins.Datetime,
			Cast:        s.Builtins.Cast,
			Regex:       s.Builtins.Regex,
			Collections: s.Builtins.Collections,
		}),
		builtins.WithClock(cfg.clock),
		builtins.WithDefaultTimezone(s.DefaultTimezone),
		builtins.WithLogger(cfg.logger),
		builtins.WithMaxPatternLength(s.Limits.MaxPatternLength),
	)
	for _, fn := range cfg.extend {
		fn(lib)
	}

	return &Engine{
		settings: s,
		evaluator: expr.New(
			expr.WithLibrary(lib),
			expr.WithParseCache(s.ParseCacheEntries),
			expr.WithMaxExpressionLength(s.Limits.MaxExpressionLength),
			expr.WithMaxRangeLength(s.Limits.MaxRangeLength),
		),
		expander: template.NewExpander(),
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		spans:    cfg.spans,
		newID:    uuid.NewString,
	}, nil
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// DefaultEngine returns a shared engine built from config.DefaultSettings.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		e, err := NewEngine(config.DefaultSettings())
		if err != nil {
			panic(err) // default settings always validate
		}
		defaultEngine = e
	})
	return defaultEngine
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() config.Settings { return e.settings }

// Library returns the engine's function table.
func (e *Engine) Library() *expr.Library { return e.evaluator.Library() }

// Compile parses src with the engine's limits and parse cache.
func (e *Engine) Compile(src string) (expr.Node, error) {
	return e.evaluator.Compile(src)
}

// Vars returns the root bindings for s: ctx and sys as objects of strings.
// The maps are read at call time.
func Vars(s *Spec) map[string]expr.Value {
	return map[string]expr.Value{
		"ctx": expr.FromStrings(s.Context),
		"sys": expr.FromStrings(s.System),
	}
}

// Eval evaluates src against the ctx and sys facts of s.
//
// Failures are wrapped as `failed to evaluate expression "<src>": <cause>`;
// the typed cause stays reachable with errors.As and errors.Is.
func (e *Engine) Eval(ctx context.Context, s *Spec, src string) (expr.Value, error) {
	if s == nil {
		return expr.Null(), ErrNilSpec
	}
	id := e.newID()
	v, err := e.evaluate(ctx, observability.EnrichLogger(e.logger, id, ""), id, Vars(s), src)
	if err != nil {
		return expr.Null(), fmt.Errorf("failed to evaluate expression \"%s\": %w", src, err)
	}
	return v, nil
}

// EvalResult evaluates src and formats the value for a response.
func (e *Engine) EvalResult(ctx context.Context, s *Spec, src string) (Result, error) {
	v, err := e.Eval(ctx, s, src)
	if err != nil {
		return Result{}, err
	}
	return FormatResult(v), nil
}

// evaluate runs one evaluation with logging, metrics and a span.
func (e *Engine) evaluate(ctx context.Context, logger *slog.Logger, id string, vars map[string]expr.Value, src string) (v expr.Value, err error) {
	observability.LogEvalStart(logger, src)
	ctx, span := e.spans.StartEvalSpan(ctx, id, src)
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		e.metrics.RecordEvaluation(ctx, v.Kind().String(), duration, err)
		e.spans.EndSpanWithError(span, err)
		ms := float64(duration.Microseconds()) / 1000
		if err != nil {
			observability.LogEvalError(logger, err, ms)
			return
		}
		observability.LogEvalComplete(logger, v.Kind().String(), ms)
	}()
	return e.evaluator.Evaluate(src, vars)
}

// Eval evaluates src against s with DefaultEngine.
//
//	v, err := dfs.Default().Eval("bool(ctx.something)")
func (s *Spec) Eval(src string) (expr.Value, error) {
	return DefaultEngine().Eval(context.Background(), s, src)
}

// EvalResult evaluates src with DefaultEngine and formats the value.
func (s *Spec) EvalResult(src string) (Result, error) {
	return DefaultEngine().EvalResult(context.Background(), s, src)
}
