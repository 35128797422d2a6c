// Package logger provides verbose logging for the polydb CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow queries and conversions.
//
// The package-level helpers and the logr loggers handed to adapters share
// one zap core, so SetVerbose and SetOutput affect both.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxVerbosity is the highest logr V-level printed in verbose mode.
const MaxVerbosity = 5

// silent is above every zap level, so nothing is enabled.
const silent = zapcore.FatalLevel + 1

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr

	level = zap.NewAtomicLevelAt(silent)
	base  = zap.New(zapcore.NewCore(newEncoder(), zapcore.AddSync(writer{}), level))
)

// writer forwards to the current output.
type writer struct{}

func (writer) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return output.Write(p)
}

func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeTime:       zapcore.RFC3339NanoTimeEncoder,
		ConsoleSeparator: " ",
	})
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch {
	case l <= zapcore.DebugLevel:
		enc.AppendString("[DEBUG]")
	case l == zapcore.InfoLevel:
		enc.AppendString("[INFO]")
	case l == zapcore.WarnLevel:
		enc.AppendString("[WARN]")
	default:
		enc.AppendString("[ERROR]")
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.Level(-MaxVerbosity))
	} else {
		level.SetLevel(silent)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	base.Sugar().Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	base.Sugar().Infof(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	base.Sugar().Warnf(format, args...)
}

// Logr returns a named structured logger for adapters. V(n).Info messages
// are printed in verbose mode for n up to MaxVerbosity.
func Logr(name string) logr.Logger {
	return zapr.NewLogger(base).WithName(name)
}
