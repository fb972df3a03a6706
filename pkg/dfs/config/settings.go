package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel  = "DFS_LOG_LEVEL"
	EnvLogFormat = "DFS_LOG_FORMAT"
	EnvTimezone  = "DFS_TIMEZONE"
	EnvMetrics   = "DFS_METRICS"
	EnvTracing   = "DFS_TRACING"
)

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// BuiltinGroups toggles families of builtin functions.
type BuiltinGroups struct {
	Maths       bool
	Datetime    bool
	Cast        bool
	Regex       bool
	Collections bool
}

// Limits bound the cost of a single evaluation. Zero means unlimited.
type Limits struct {
	MaxExpressionLength int
	MaxPatternLength    int
	MaxRangeLength      int
}

// Settings is the engine configuration. It is a plain value: build it
// once, then pass it to the engine.
type Settings struct {
	Builtins BuiltinGroups

	// DefaultTimezone is used by date functions called without a zone.
	DefaultTimezone string

	Limits Limits

	// ParseCacheEntries bounds the parsed expression cache. 0 disables it.
	ParseCacheEntries int

	LogLevel  string
	LogFormat string

	Metrics bool
	Tracing bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Builtins: BuiltinGroups{
			Maths:       true,
			Datetime:    true,
			Cast:        true,
			Regex:       true,
			Collections: true,
		},
		DefaultTimezone: "_",
		Limits: Limits{
			MaxExpressionLength: 4096,
			MaxPatternLength:    1024,
			MaxRangeLength:      1_000_000,
		},
		ParseCacheEntries: 256,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// FromConfig reads settings from c, keeping defaults for missing keys.
//
//	builtins:
//	  maths: true
//	  regex: false
//	timezone:
//	  default: US/Eastern
//	limits:
//	  max_expression_length: 4096
//	cache:
//	  parse_entries: 256
//	log:
//	  level: debug
//	  format: json
//	telemetry:
//	  metrics: true
func FromConfig(c Config) Settings {
	d := DefaultSettings()
	return Settings{
		Builtins: BuiltinGroups{
			Maths:       c.Bool("builtins.maths", d.Builtins.Maths),
			Datetime:    c.Bool("builtins.datetime", d.Builtins.Datetime),
			Cast:        c.Bool("builtins.cast", d.Builtins.Cast),
			Regex:       c.Bool("builtins.regex", d.Builtins.Regex),
			Collections: c.Bool("builtins.collections", d.Builtins.Collections),
		},
		DefaultTimezone: c.String("timezone.default", d.DefaultTimezone),
		Limits: Limits{
			MaxExpressionLength: c.Int("limits.max_expression_length", d.Limits.MaxExpressionLength),
			MaxPatternLength:    c.Int("limits.max_pattern_length", d.Limits.MaxPatternLength),
			MaxRangeLength:      c.Int("limits.max_range_length", d.Limits.MaxRangeLength),
		},
		ParseCacheEntries: c.Int("cache.parse_entries", d.ParseCacheEntries),
		LogLevel:          c.String("log.level", d.LogLevel),
		LogFormat:         c.String("log.format", d.LogFormat),
		Metrics:           c.Bool("telemetry.metrics", d.Metrics),
		Tracing:           c.Bool("telemetry.tracing", d.Tracing),
	}
}

// LoadSettings reads settings from path. An empty path yields defaults.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	c, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := FromConfig(c)
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv returns s with overrides from the environment applied.
// lookup is typically os.LookupEnv.
func (s Settings) ApplyEnv(lookup func(string) (string, bool)) (Settings, error) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		s.LogFormat = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		s.DefaultTimezone = v
	}
	for name, dst := range map[string]*bool{EnvMetrics: &s.Metrics, EnvTracing: &s.Tracing} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidSettings, name, v)
		}
		*dst = b
	}
	return s, s.Validate()
}

// Validate checks that every field holds a usable value.
func (s Settings) Validate() error {
	var problems []string
	if _, err := ParseLevel(s.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log format %q must be text or json", s.LogFormat))
	}
	if s.Limits.MaxExpressionLength < 0 || s.Limits.MaxPatternLength < 0 || s.Limits.MaxRangeLength < 0 {
		problems = append(problems, "limits must not be negative")
	}
	if s.ParseCacheEntries < 0 {
		problems = append(problems, "cache.parse_entries must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// Level returns the configured log level, or info if it is invalid.
func (s Settings) Level() slog.Level {
	lvl, err := ParseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q must be debug, info, warn or error", s)
	}
	return lvl, nil
}
