// Package observability provides logging, metrics and tracing helpers for
// expression evaluation and dialog case selection.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Metrics and tracing are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// EnrichLogger adds evaluation context to a logger.
// Returns a new logger with eval_id and intent fields. An empty intent is
// omitted.
//
// Example:
//
//	enriched := EnrichLogger(logger, id, "billing")
//	enriched.Info("selecting") // includes eval_id, intent
func EnrichLogger(logger *slog.Logger, evalID, intent string) *slog.Logger {
	if logger == nil {
		return nil
	}
	if intent == "" {
		return logger.With(slog.String("eval_id", evalID))
	}
	return logger.With(
		slog.String("eval_id", evalID),
		slog.String("intent", intent),
	)
}

// The helpers below expect a logger from EnrichLogger and do not repeat
// the eval_id and intent fields it carries.

// LogEvalStart logs the start of an expression evaluation.
func LogEvalStart(logger *slog.Logger, expression string) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation starting",
		slog.String("expression", expression),
	)
}

// LogEvalComplete logs a successful evaluation.
func LogEvalComplete(logger *slog.Logger, resultKind string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation completed",
		slog.String("result_kind", resultKind),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvalError logs a failed evaluation. Evaluation failures are
// recoverable so they are logged at warn.
func LogEvalError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("evaluation failed",
		slog.String("error_kind", dfserrors.Categorize(err).String()),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSelection logs the outcome of case selection for an intent.
// caseIndex is -1 when no case matched.
func LogSelection(logger *slog.Logger, caseIndex int, durationMs float64) {
	if logger == nil {
		return
	}
	if caseIndex < 0 {
		logger.Info("no case matched",
			slog.Float64("duration_ms", durationMs),
		)
		return
	}
	logger.Info("case selected",
		slog.Int("case", caseIndex),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCaseError logs a case whose condition failed to evaluate. Selection
// continues with the next case.
func LogCaseError(logger *slog.Logger, caseIndex int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("case condition failed",
		slog.Int("case", caseIndex),
		slog.String("error", err.Error()),
	)
}

// LogSpecLoaded logs a spec document read from disk.
func LogSpecLoaded(logger *slog.Logger, path string, dialogs int) {
	if logger == nil {
		return
	}
	logger.Info("spec loaded",
		slog.String("path", path),
		slog.Int("dialogs", dialogs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds with microsecond resolution.
//
// Example:
//
//	done := TimedOperation()
//	// ... evaluate ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
