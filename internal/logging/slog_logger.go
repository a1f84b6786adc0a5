package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vvka-141/transient/pkg/transient"
)

var _ transient.Logger = (*SlogLogger)(nil)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SlogLogger adapts a *slog.Logger to transient.Logger.
// Verbose maps to slog.LevelDebug.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// NewJSONLogger creates a SlogLogger emitting JSON records to out.
func NewJSONLogger(out io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})))
}

// Slog returns the underlying slog logger for structured attributes.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// Verbose logs at debug level.
func (l *SlogLogger) Verbose(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args)
}

// Info logs at info level.
func (l *SlogLogger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args)
}

// Error logs at error level.
func (l *SlogLogger) Error(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args)
}

func (l *SlogLogger) log(level slog.Level, format string, args []interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.logger.Log(ctx, level, msg)
}

// New creates a logger for the given output format ("text" or "json").
func New(format string, out io.Writer, verbose bool) (transient.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewConsoleLoggerTo(out, verbose), nil
	case FormatJSON:
		return NewJSONLogger(out, verbose), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (expected %s or %s)",
			transient.ErrInvalidArgument, format, FormatText, FormatJSON)
	}
}
