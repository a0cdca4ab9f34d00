package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	std     *log.Logger
	stdOnce sync.Once
)

// get returns the process logger, creating it on first use
func get() *log.Logger {
	stdOnce.Do(func() {
		std = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "testproject",
			Level:  log.InfoLevel,
		})
	})
	return std
}

// Configure applies the log section of the config. An empty level keeps the
// current one; debug overrides level and adds caller information.
func Configure(level, format string, debug bool) error {
	if level != "" {
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		SetLevel(lvl)
	}
	if err := SetFormat(format); err != nil {
		return err
	}
	if debug {
		SetDebug(true)
	}
	return nil
}

// SetLevel sets the logging level
func SetLevel(level log.Level) {
	get().SetLevel(level)
}

// SetDebug switches between debug level with callers and info level
func SetDebug(debug bool) {
	l := get()
	l.SetReportCaller(debug)
	if debug {
		l.SetLevel(log.DebugLevel)
		return
	}
	l.SetLevel(log.InfoLevel)
}

// SetFormat selects "text", "json" or "logfmt" output
func SetFormat(format string) error {
	formatters := map[string]log.Formatter{
		"":       log.TextFormatter,
		"text":   log.TextFormatter,
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	f, ok := formatters[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("unknown log format %q", format)
	}
	get().SetFormatter(f)
	return nil
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// Leveled logging on the process logger
func Info(msg string, keyvals ...any)  { get().Info(msg, keyvals...) }
func Debug(msg string, keyvals ...any) { get().Debug(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { get().Error(msg, keyvals...) }

// Fatal logs and exits the process
func Fatal(msg string, keyvals ...any) { get().Fatal(msg, keyvals...) }

// With returns a child logger carrying keyvals
func With(keyvals ...any) *log.Logger {
	return get().With(keyvals...)
}

// Disable drops all output. The MCP stdio transport owns stdout, and tests
// use it to keep output quiet.
func Disable() {
	SetOutput(io.Discard)
}

// Enable restores output to stderr
func Enable() {
	SetOutput(os.Stderr)
}
