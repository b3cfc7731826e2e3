package badgecheck

import (
	"fmt"
	"log"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Logger is a structured logging interface compatible with log/slog.
// Messages carry alternating key-value pairs, as in slog.Logger.Info.
// Any Logger can be handed to core.WithLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogLevel represents the level of logging.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// DefaultLogger writes key=value lines through the standard library log
// package, dropping messages above Level.
type DefaultLogger struct {
	Level LogLevel
}

// NewDefaultLogger returns a DefaultLogger that logs at level and below.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return &DefaultLogger{Level: level}
}

func (l *DefaultLogger) Debug(msg string, args ...any) { l.print(LogLevelDebug, "DEBUG", msg, args) }
func (l *DefaultLogger) Info(msg string, args ...any)  { l.print(LogLevelInfo, "INFO", msg, args) }
func (l *DefaultLogger) Warn(msg string, args ...any)  { l.print(LogLevelWarn, "WARN", msg, args) }
func (l *DefaultLogger) Error(msg string, args ...any) { l.print(LogLevelError, "ERROR", msg, args) }

func (l *DefaultLogger) print(level LogLevel, prefix, msg string, args []any) {
	if level > l.Level {
		return
	}
	log.Print(formatLine(prefix, msg, args))
}

func formatLine(prefix, msg string, args []any) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(": ")
	b.WriteString(msg)
	for _, kv := range fields(args) {
		fmt.Fprintf(&b, " %s=%v", kv.key, kv.value)
	}
	return b.String()
}

// fields pairs up slog-style arguments. A trailing key without a value is
// logged under "!BADKEY", as slog does.
func fields(args []any) orderedFields {
	out := make(orderedFields, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out = append(out, field{key: "!BADKEY", value: args[i]})
			break
		}
		out = append(out, field{key: fmt.Sprint(args[i]), value: args[i+1]})
	}
	return out
}

type field struct {
	key   string
	value any
}

type orderedFields []field

func (f orderedFields) toMap() map[string]any {
	m := make(map[string]any, len(f))
	for _, kv := range f {
		m[kv.key] = kv.value
	}
	return m
}

// NewZapLogger returns a Logger adapter for zap.SugaredLogger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapLoggerAdapter{l}
}

type zapLoggerAdapter struct{ l *zap.SugaredLogger }

func (z *zapLoggerAdapter) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *zapLoggerAdapter) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *zapLoggerAdapter) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *zapLoggerAdapter) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func (z *zerologLoggerAdapter) Debug(msg string, args ...any) {
	z.l.Debug().Fields(fields(args).toMap()).Msg(msg)
}
func (z *zerologLoggerAdapter) Info(msg string, args ...any) {
	z.l.Info().Fields(fields(args).toMap()).Msg(msg)
}
func (z *zerologLoggerAdapter) Warn(msg string, args ...any) {
	z.l.Warn().Fields(fields(args).toMap()).Msg(msg)
}
func (z *zerologLoggerAdapter) Error(msg string, args ...any) {
	z.l.Error().Fields(fields(args).toMap()).Msg(msg)
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (l *logrusLoggerAdapter) entry(args []any) *logrus.Entry {
	return l.l.WithFields(logrus.Fields(fields(args).toMap()))
}

func (l *logrusLoggerAdapter) Debug(msg string, args ...any) { l.entry(args).Debug(msg) }
func (l *logrusLoggerAdapter) Info(msg string, args ...any)  { l.entry(args).Info(msg) }
func (l *logrusLoggerAdapter) Warn(msg string, args ...any)  { l.entry(args).Warn(msg) }
func (l *logrusLoggerAdapter) Error(msg string, args ...any) { l.entry(args).Error(msg) }
