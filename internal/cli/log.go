package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger writes status lines for the user. Info goes to the output stream,
// Error and Debug to the error stream, so a chart printed on stdout is only
// ever followed by informational lines.
type Logger struct {
	out *log.Logger
	err *log.Logger
}

// NewLogger creates a logger writing info lines to out and everything else
// to errOut.
func NewLogger(out, errOut io.Writer, level log.Level) *Logger {
	return &Logger{
		out: newLogger(out, level),
		err: newLogger(errOut, level),
	}
}

// newLogger creates a charm logger without timestamps whose level prefixes
// read "Info:", "Error:" and so on.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Level: level})
	l.SetStyles(levelStyles())
	return l
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels = map[log.Level]lipgloss.Style{
		log.DebugLevel: lipgloss.NewStyle().SetString("Debug:").Foreground(colorGray),
		log.InfoLevel:  lipgloss.NewStyle().SetString("Info:").Foreground(colorBlue),
		log.WarnLevel:  lipgloss.NewStyle().SetString("Warn:").Foreground(colorYellow),
		log.ErrorLevel: lipgloss.NewStyle().SetString("Error:").Foreground(colorRed),
		log.FatalLevel: lipgloss.NewStyle().SetString("Fatal:").Bold(true).Foreground(colorRed),
	}
	return styles
}

// Info logs to the output stream.
func (l *Logger) Info(msg any, keyvals ...any) { l.out.Info(msg, keyvals...) }

// Error logs to the error stream.
func (l *Logger) Error(msg any, keyvals ...any) { l.err.Error(msg, keyvals...) }

// Debug logs to the error stream when verbose.
func (l *Logger) Debug(msg any, keyvals ...any) { l.err.Debug(msg, keyvals...) }

// SetLevel updates the level of both streams.
func (l *Logger) SetLevel(level log.Level) {
	l.out.SetLevel(level)
	l.err.SetLevel(level)
}

// Diagnostics returns the error-stream logger, for library code that takes a
// *log.Logger and must never write to stdout.
func (l *Logger) Diagnostics() *log.Logger { return l.err }

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level along with the elapsed time, rounded to the
// millisecond. Example output: "Debug: rendered chart (12ms)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// Without one it returns a logger on the process streams.
func loggerFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return defaultLogger()
}
