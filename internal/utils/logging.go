package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel is one of the level names accepted by log_level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logrusLevels = map[LogLevel]logrus.Level{
	LogLevelDebug: logrus.DebugLevel,
	LogLevelInfo:  logrus.InfoLevel,
	LogLevelWarn:  logrus.WarnLevel,
	LogLevelError: logrus.ErrorLevel,
}

// LogFormat selects text or JSON log lines
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger wraps logrus.Logger. The report owns stdout, so log lines go to
// stderr unless told otherwise.
type Logger struct {
	*logrus.Logger
}

// LoggerConfig holds the settings NewLogger needs. A nil Output means stderr.
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// NewLogger creates a logger. Unknown levels fall back to warn.
func NewLogger(config LoggerConfig) *Logger {
	logger := logrus.New()

	level, ok := logrusLevels[config.Level]
	if !ok {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if config.Format == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	return &Logger{Logger: logger}
}

// NewDefaultLogger creates a warn-level text logger on stderr, so a plain
// run only prints the report.
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerConfig{Level: LogLevelWarn, Format: LogFormatText})
}

// LoggerFromConfig builds the logger described by the log_level and
// log_format settings of cfg.
func LoggerFromConfig(cfg *Config, out io.Writer) *Logger {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = LogLevelWarn
	}
	return NewLogger(LoggerConfig{
		Level:  level,
		Format: ParseLogFormat(cfg.LogFormat),
		Output: out,
	})
}

// WithComponent tags entries with the package doing the work
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// WithFile tags entries with the component and the input file
func (l *Logger) WithFile(component, path string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"component": component, "file": path})
}

// ParseLogLevel accepts the level names plus "warning" as an alias for warn
func ParseLogLevel(level string) (LogLevel, error) {
	name := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	if name == "warning" {
		name = LogLevelWarn
	}
	if _, ok := logrusLevels[name]; !ok {
		return LogLevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return name, nil
}

// ParseLogFormat returns json for "json" in any case and text otherwise
func ParseLogFormat(format string) LogFormat {
	if strings.EqualFold(format, string(LogFormatJSON)) {
		return LogFormatJSON
	}
	return LogFormatText
}

type loggerKey struct{}

// WithLogger stores logger in ctx for code that only receives a context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger stored by WithLogger, or a default one
func LoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return NewDefaultLogger()
}
