// Package log configures structured logging for the analysis pipeline.
//
// Output is JSON on stderr via log/slog, wrapped by ErrFmtHandler so that
// errors carrying cockroachdb stack traces are emitted with a dedicated
// stacktrace attribute. Standard attribute keys for pipeline operations live
// in attributes.go.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// Setup installs the pipeline's default slog logger at the given level.
// Level must be one of "debug", "info", "warn", "error".
func Setup(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel maps a level name to its slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for slog so ErrFmtHandler can pick up its stack trace.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
