// Package builtins provides the function library available to dialog
// conditions: casts, pattern matching, timezone-aware date functions,
// numeric constants and a few total helpers over numbers and collections.
//
// Every builtin is total. Missing or wrongly typed arguments degrade to a
// documented default instead of failing. The only errors are an invalid
// or oversized is_match pattern.
package builtins

import (
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

// Groups selects which families of builtins are registered.
type Groups struct {
	Maths       bool
	Datetime    bool
	Cast        bool
	Regex       bool
	Collections bool
}

// AllGroups enables every family.
func AllGroups() Groups {
	return Groups{Maths: true, Datetime: true, Cast: true, Regex: true, Collections: true}
}

// Any reports whether at least one family is enabled.
func (g Groups) Any() bool {
	return g.Maths || g.Datetime || g.Cast || g.Regex || g.Collections
}

// Defaults applied by Register.
const (
	DefaultMaxPatternLength = 1024
	DefaultPatternCacheSize = 128
)

type settings struct {
	groups       Groups
	clock        Clock
	defaultZone  string
	logger       *slog.Logger
	maxPattern   int
	patternCache int
}

// Option configures Register.
type Option func(*settings)

// WithGroups selects the registered families.
func WithGroups(g Groups) Option {
	return func(s *settings) { s.groups = g }
}

// WithClock replaces the wall clock used by the date functions.
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDefaultTimezone sets the zone used when a date function receives
// no timezone argument. Unrecognized names fall back to UTC.
func WithDefaultTimezone(name string) Option {
	return func(s *settings) { s.defaultZone = name }
}

// WithLogger sets the logger receiving timezone warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxPatternLength rejects is_match patterns longer than n bytes.
// A value <= 0 removes the limit.
func WithMaxPatternLength(n int) Option {
	return func(s *settings) { s.maxPattern = n }
}

// WithPatternCache keeps up to n compiled patterns.
func WithPatternCache(n int) Option {
	return func(s *settings) { s.patternCache = n }
}

// Register adds the selected builtins to lib and returns it.
func Register(lib *expr.Library, opts ...Option) *expr.Library {
	s := settings{
		groups:       AllGroups(),
		clock:        time.Now,
		defaultZone:  UTCZone,
		logger:       slog.Default(),
		maxPattern:   DefaultMaxPatternLength,
		patternCache: DefaultPatternCacheSize,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.groups.Cast {
		lib.Define("int", castInt).
			Define("float", castFloat).
			Define("bool", castBool).
			Define("str", castStr)
	}

	if s.groups.Maths {
		for name, v := range Constants() {
			lib.DefineConst(name, v)
		}
		lib.Define("abs", abs).
			Define("is_nan", isNaN).
			Define("min", extreme(true)).
			Define("max", extreme(false)).
			Define("sum", sum)
	}

	if s.groups.Regex {
		p := newPatterns(s.patternCache, s.maxPattern)
		lib.Define("is_match", p.isMatch)
	}

	if s.groups.Datetime {
		zone, ok := LookupZone(s.defaultZone)
		if !ok {
			s.logger.Warn("timezone not recognized, defaulting to UTC",
				slog.String("timezone", s.defaultZone))
			zone = time.UTC
		}
		d := &datetime{clock: s.clock, defaultZone: zone, logger: s.logger}
		lib.Define("day", d.day).
			Define("month", d.month).
			Define("year", d.year).
			Define("weekday", d.weekday).
			Define("is_weekday", d.isWeekday).
			Define("is_weekend", d.isWeekend).
			Define("time", d.time)
	}

	if s.groups.Collections {
		lib.Define("len", length).
			Define("is_empty", isEmpty).
			Define("includes", includes)
	}

	return lib
}

// NewLibrary returns a fresh Library holding the selected builtins.
func NewLibrary(opts ...Option) *expr.Library {
	return Register(expr.NewLibrary(), opts...)
}

var (
	defaultOnce sync.Once
	defaultLib  *expr.Library
)

// Default returns a shared Library with every builtin and the wall clock.
// Callers must not modify it; use Clone to extend it.
func Default() *expr.Library {
	defaultOnce.Do(func() {
		defaultLib = NewLibrary()
	})
	return defaultLib
}
