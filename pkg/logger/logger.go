// Package logger is the fire-and-forget logging sink used by every timerace
// component. Nothing in the program depends on when, or in which order, a
// message reaches a backend.
package logger

import (
	"fmt"
	"io"
	"log"
)

// Logger defines the logging interface shared by all timerace components.
type Logger interface {
	// Info logs an informational message (e.g., "I finish timeout id 1 number 0").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "firing aborted").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "An error occurred: ...").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// Console writes "[LEVEL] message" lines with a microsecond timestamp, so
// that the interleaving of concurrent sessions can be read off the output.
type Console struct {
	l *log.Logger
}

func NewConsole(w io.Writer) *Console {
	return &Console{l: log.New(w, "", log.Ltime|log.Lmicroseconds)}
}

func (c *Console) Info(format string, args ...interface{}) {
	c.write(LevelInfo, format, args...)
}

func (c *Console) Warning(format string, args ...interface{}) {
	c.write(LevelWarning, format, args...)
}

func (c *Console) Error(format string, args ...interface{}) {
	c.write(LevelError, format, args...)
}

func (c *Console) Close() error {
	return nil
}

func (c *Console) write(level Level, format string, args ...interface{}) {
	c.l.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// NopLogger discards all messages.
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*Console)(nil)
	_ Logger = (*NopLogger)(nil)
)
