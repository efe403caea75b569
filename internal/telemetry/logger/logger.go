package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format selects the output encoding: json (default) or text.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource records the caller on each entry.
	AddSource bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// globalLevel backs every logger built by New, so SetLevel reaches
// loggers that were created before the level change.
var globalLevel = new(slog.LevelVar)

// New builds a logger that redacts sensitive attributes on every entry.
func New(cfg Config) (Logger, error) {
	sl, err := NewSlog(cfg)
	if err != nil {
		return nil, err
	}
	return wrapped{sl}, nil
}

// NewSlog builds a redacting *slog.Logger for components that take the
// standard logger type directly.
func NewSlog(cfg Config) (*slog.Logger, error) {
	globalLevel.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     globalLevel,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(h), nil
}

// SetLevel adjusts the level of all loggers at runtime, typically from
// a SIGHUP reload.
func SetLevel(level string) {
	globalLevel.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type wrapped struct {
	sl *slog.Logger
}

func (w wrapped) Debug(msg string, args ...any) { w.sl.Debug(msg, args...) }
func (w wrapped) Info(msg string, args ...any)  { w.sl.Info(msg, args...) }
func (w wrapped) Warn(msg string, args ...any)  { w.sl.Warn(msg, args...) }
func (w wrapped) Error(msg string, args ...any) { w.sl.Error(msg, args...) }
func (w wrapped) With(args ...any) Logger       { return wrapped{w.sl.With(args...)} }

// defaultLogger serves the package-level convenience functions.
var defaultLogger atomic.Pointer[wrapped]

func init() {
	l, _ := New(DefaultConfig())
	w := l.(wrapped)
	defaultLogger.Store(&w)
}

// SetDefault replaces the package default logger.
func SetDefault(l Logger) {
	if w, ok := l.(wrapped); ok {
		defaultLogger.Store(&w)
	}
}

// Default returns the package default logger.
func Default() Logger {
	return *defaultLogger.Load()
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Load().Debug(msg, args...) }

// Info logs at info level using the default logger.
func Info(msg string, args ...any) { defaultLogger.Load().Info(msg, args...) }

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Load().Warn(msg, args...) }

// Error logs at error level using the default logger.
func Error(msg string, args ...any) { defaultLogger.Load().Error(msg, args...) }
