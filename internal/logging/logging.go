package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a component-scoped structured logger. Every log line carries a
// "component" attribute so multi-component traces can be filtered per layer.
type Logger struct {
	*slog.Logger
}

// New returns a logger scoped to the given component name.
func New(component string) *Logger {
	return &Logger{Logger: slog.Default().With(slog.String("component", component))}
}

// Init installs the process-wide JSON handler. Level is read from LOG_LEVEL
// (debug, info, warn, error); anything unrecognized falls back to info.
func Init() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Fatal logs at error level and exits. Reserved for startup failures.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
