package builtins

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

// Clock returns the current instant.
type Clock func() time.Time

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// ParseClock parses a human written instant ("2024-03-01 09:30",
// "March 1, 2024 9:30am", RFC 3339, unix seconds, ...) into a FixedClock.
// Inputs without a zone are read in loc; nil means UTC.
func ParseClock(s string, loc *time.Location) (Clock, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), loc, dateparse.PreferMonthFirst(true))
	if err != nil {
		return nil, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return FixedClock(t), nil
}

// datetime implements the timezone-aware date builtins.
type datetime struct {
	clock       Clock
	defaultZone *time.Location
	logger      *slog.Logger
}

// now reads the clock in the zone named by the leading argument.
func (d *datetime) now(fn string, args []expr.Value) time.Time {
	return d.clock().In(d.zone(fn, args))
}

func (d *datetime) zone(fn string, args []expr.Value) *time.Location {
	if len(args) == 0 {
		return d.defaultZone
	}
	name, ok := args[0].AsString()
	if !ok {
		d.logger.Warn("timezone argument is not a string, defaulting to UTC",
			slog.String("function", fn),
			slog.String("kind", args[0].Kind().String()),
		)
		return time.UTC
	}
	loc, ok := LookupZone(name)
	if !ok {
		d.logger.Warn("timezone not recognized, defaulting to UTC",
			slog.String("function", fn),
			slog.String("timezone", name),
		)
		return time.UTC
	}
	return loc
}

// isoWeekday numbers days from Monday = 1 to Sunday = 7.
func isoWeekday(t time.Time) int64 {
	return int64((t.Weekday()+6)%7) + 1
}

func (d *datetime) day(args []expr.Value) (expr.Value, error) {
	return expr.Int(int64(d.now("day", args).Day())), nil
}

func (d *datetime) month(args []expr.Value) (expr.Value, error) {
	return expr.Int(int64(d.now("month", args).Month())), nil
}

func (d *datetime) year(args []expr.Value) (expr.Value, error) {
	return expr.Int(int64(d.now("year", args).Year())), nil
}

func (d *datetime) weekday(args []expr.Value) (expr.Value, error) {
	return expr.Int(isoWeekday(d.now("weekday", args))), nil
}

func (d *datetime) isWeekday(args []expr.Value) (expr.Value, error) {
	return expr.Bool(isoWeekday(d.now("is_weekday", args)) < 6), nil
}

func (d *datetime) isWeekend(args []expr.Value) (expr.Value, error) {
	return expr.Bool(isoWeekday(d.now("is_weekend", args)) >= 6), nil
}

// time returns the hour, minute or second of now.
//
//	time()              hour in the default zone
//	time("US/Pacific")  hour in that zone
//	time("minutes")     minute in the default zone
//	time(tz, unit)      unit in tz
func (d *datetime) time(args []expr.Value) (expr.Value, error) {
	var (
		t    time.Time
		unit string
	)
	switch len(args) {
	case 0:
		t = d.clock().In(d.defaultZone)
	case 1:
		if name, ok := args[0].AsString(); ok {
			if loc, ok := LookupZone(name); ok {
				t = d.clock().In(loc)
				break
			}
		}
		t = d.clock().In(d.defaultZone)
		unit = ToStr(args[0])
	default:
		t = d.now("time", args)
		unit = ToStr(args[1])
	}

	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "m", "minute", "minutes":
		return expr.Int(int64(t.Minute())), nil
	case "s", "second", "seconds":
		return expr.Int(int64(t.Second())), nil
	default:
		return expr.Int(int64(t.Hour())), nil
	}
}
