// Package log is a thin structured logging layer over zerolog. It keeps a
// single package-level logger so every package can log with key/value pairs
// (Infow, Debugw...) without passing a logger around.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var (
	log      zerolog.Logger
	logLevel = LogLevelError

	// panicOnInvalidChars makes the logger panic when a log line contains
	// non UTF-8 bytes, which usually means raw bytes were logged with %s.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	// logTestWriter is used as output when Init is called with
	// logTestWriterName, so benchmarks can discard output.
	logTestWriter     io.Writer = os.Stdout
	logTestWriterName           = "log_test_writer"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = LogLevelError
	}
	Init(level, "stderr", nil)
}

// errorLevelWriter sends only error (and higher) events to w.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init configures the logger. level is one of debug, info, warn or error.
// output is "stdout", "stderr" or a file path. If errorOutput is not nil,
// errors are additionally written there.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	out = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339Nano,
		FormatCaller: func(i any) string {
			s, _ := i.(string)
			return path.Base(s)
		},
	}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, &errorLevelWriter{errorOutput})
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	// skip the frames of the helpers below (Infow -> emit -> Msg)
	log = zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(4).Logger()

	switch level {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	logLevel = level
}

// Logger returns the configured zerolog logger.
func Logger() *zerolog.Logger {
	return &log
}

// Level returns the current log level.
func Level() string {
	return logLevel
}

// withKeysAndValues adds alternating key/value pairs to the event.
func withKeysAndValues(e *zerolog.Event, keysAndValues ...any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		switch v := keysAndValues[i+1].(type) {
		case []byte:
			e = e.Str(key, fmt.Sprintf("%x", v))
		case error:
			if v == nil {
				e = e.Str(key, "<nil>")
			} else {
				e = e.Str(key, v.Error())
			}
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

// emit checks the message and sends the event.
func emit(e *zerolog.Event, msg string) {
	if panicOnInvalidChars && !utf8.ValidString(msg) {
		panic(fmt.Sprintf("log message contains invalid utf-8: %q", msg))
	}
	e.Msg(msg)
}

func Debug(args ...any) {
	emit(log.Debug(), fmt.Sprint(args...))
}

func Info(args ...any) {
	emit(log.Info(), fmt.Sprint(args...))
}

func Warn(args ...any) {
	emit(log.Warn(), fmt.Sprint(args...))
}

func Error(args ...any) {
	emit(log.Error(), fmt.Sprint(args...))
}

// Fatal logs the message with the current stack trace and exits with status 1.
func Fatal(args ...any) {
	emit(log.Fatal(), fmt.Sprint(args...)+"\n"+string(bytes.TrimSpace(debug.Stack())))
}

func Debugf(template string, args ...any) {
	emit(log.Debug(), fmt.Sprintf(template, args...))
}

func Infof(template string, args ...any) {
	emit(log.Info(), fmt.Sprintf(template, args...))
}

func Warnf(template string, args ...any) {
	emit(log.Warn(), fmt.Sprintf(template, args...))
}

func Errorf(template string, args ...any) {
	emit(log.Error(), fmt.Sprintf(template, args...))
}

func Fatalf(template string, args ...any) {
	emit(log.Fatal(), fmt.Sprintf(template, args...))
}

// Debugw logs a message with some additional context. The variadic
// key-value pairs are treated as they are in With.
func Debugw(msg string, keysAndValues ...any) {
	emit(withKeysAndValues(log.Debug(), keysAndValues...), msg)
}

// Infow logs a message with some additional context.
func Infow(msg string, keysAndValues ...any) {
	emit(withKeysAndValues(log.Info(), keysAndValues...), msg)
}

// Warnw logs a message with some additional context.
func Warnw(msg string, keysAndValues ...any) {
	emit(withKeysAndValues(log.Warn(), keysAndValues...), msg)
}

// Errorw logs an error with a message and some additional context.
func Errorw(err error, msg string, keysAndValues ...any) {
	emit(withKeysAndValues(log.Error().Err(err), keysAndValues...), msg)
}
