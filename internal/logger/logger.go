package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var defaultLogger zerolog.Logger
var showDateTime bool

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	defaultLogger = newLogger(zerolog.InfoLevel)
	showDateTime = false
}

func newLogger(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	if !showDateTime {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Caller().Logger()
}

// SetShowDateTime toggles timestamps on console output
func SetShowDateTime(value bool) {
	showDateTime = value
	defaultLogger = newLogger(defaultLogger.GetLevel())
}

// SetLevel changes the minimum level emitted by the default logger
// Accepts "debug", "info", "warn", "error"
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	defaultLogger = defaultLogger.Level(parsed)
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
func SetLogOutput(outputType rune) {
	level := defaultLogger.GetLevel()
	switch outputType {
	case 'c':
		defaultLogger = newLogger(level)
	case 'f':
		logFile, err := os.OpenFile("/tmp/podds.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defaultLogger = zerolog.New(logFile).Level(level).With().Timestamp().Caller().Logger()
	case 'b':
		logFile, err := os.OpenFile("/tmp/podds.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		multi := zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, logFile)
		defaultLogger = zerolog.New(multi).Level(level).With().Timestamp().Caller().Logger()
	default:
		fmt.Fprintf(os.Stderr, "Invalid log output type: %c\n", outputType)
		os.Exit(1)
	}
}

// formatArgs converts any number of arguments into a single message string
// so call sites can pass values without printf verbs
func formatArgs(args ...any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case float32:
			parts = append(parts, fmt.Sprintf("%.2f", v))
		case float64:
			parts = append(parts, fmt.Sprintf("%.2f", v))
		case int:
			parts = append(parts, fmt.Sprintf("%d", v))
		case bool:
			parts = append(parts, fmt.Sprintf("%v", v))
		case string:
			parts = append(parts, v)
		case error:
			parts = append(parts, v.Error())
		case nil:
			parts = append(parts, "nil")
		default:
			parts = append(parts, fmt.Sprintf("%+v", v))
		}
	}
	return strings.Join(parts, " ")
}

func compose(msg string, v ...any) string {
	if len(v) == 0 {
		return msg
	}
	return msg + " " + formatArgs(v...)
}

// Convenience methods using the default logger

func Debug(msg string, v ...any) {
	defaultLogger.Debug().Msg(compose(msg, v...))
}

func Info(msg string, v ...any) {
	defaultLogger.Info().Msg(compose(msg, v...))
}

func Warn(msg string, v ...any) {
	defaultLogger.Warn().Msg(compose(msg, v...))
}

func Error(msg string, v ...any) {
	defaultLogger.Error().Msg(compose(msg, v...))
}

func Fatal(msg string, v ...any) {
	defaultLogger.Fatal().Msg(compose(msg, v...))
}
