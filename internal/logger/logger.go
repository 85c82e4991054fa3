package logger

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota // Debug information (only shown with --verbose)
	LevelInfo               // Important steps
	LevelError              // Error messages
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

// LoggerKey is the context key for the logger instance
const LoggerKey ContextKey = "logger"

// Logger provides structured logging for the agent loop
type Logger struct {
	zl zerolog.Logger
}

// Options configure the console output.
type Options struct {
	Level   Level
	NoColor bool
	// JSON switches from the human console format to raw JSON lines.
	JSON bool
}

// NewLogger creates a new Logger writing to w (stderr if nil)
func NewLogger(w io.Writer, opts Options) *Logger {
	if w == nil {
		w = os.Stderr
	}

	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    opts.NoColor,
			TimeFormat: "15:04:05",
		}
	}

	zl := zerolog.New(out).With().Timestamp().Logger().Level(toZerolog(opts.Level))
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Debug logs debug information (only shown in verbose mode)
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs general information
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// ToolCall logs a tool call with its parameters
func (l *Logger) ToolCall(toolName string, params string) {
	l.zl.Info().
		Str("tool", toolName).
		Str("params", compactJSON(params)).
		Msg("tool call")
}

// ToolResult logs a tool execution result
func (l *Logger) ToolResult(toolName string, success bool, output string, duration time.Duration) {
	ev := l.zl.Info()
	if !success {
		ev = l.zl.Error()
	}
	ev.Str("tool", toolName).
		Bool("success", success).
		Dur("duration", duration).
		Str("output", truncate(output)).
		Msg("tool result")
}

// SessionStart logs the beginning of a conversation session
func (l *Logger) SessionStart(sessionID string) {
	l.zl.Info().Str("session", sessionID).Msg("session started")
}

// SessionEnd logs the completion of a session with statistics
func (l *Logger) SessionEnd(duration time.Duration, toolCallCount int) {
	l.zl.Info().
		Dur("duration", duration.Round(time.Millisecond)).
		Int("tool_calls", toolCallCount).
		Msg("session completed")
}

// truncate limits output to 2 lines and 500 characters
func truncate(output string) string {
	const maxLines = 2
	const maxLength = 500

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	display := output
	truncatedLines := false

	if len(lines) > maxLines {
		display = strings.Join(lines[:maxLines], "\n")
		truncatedLines = true
	}

	if len(display) > maxLength {
		display = display[:maxLength] + "..."
	} else if truncatedLines {
		display += "\n..."
	}

	return display
}

// compactJSON strips insignificant whitespace from JSON params, returning the
// input unchanged when it is not valid JSON.
func compactJSON(s string) string {
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return strings.TrimSpace(s)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return string(b)
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// FromContext retrieves the logger from the context or returns a nop logger
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(LoggerKey).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}
