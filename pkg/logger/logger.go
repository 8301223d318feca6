package logger

import (
	"io"
	"log"
	"os"
)

// Log levels as they appear in emitted lines.
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// Logger writes timestamped, leveled lines to a single sink. Lines look
// like "2025/12/19 06:00:00 - INFO - Extracted 3 rows from data/products.csv".
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{l: log.New(w, "", log.LstdFlags)}
}

// NewStdout creates a Logger writing to standard output.
func NewStdout() *Logger {
	return New(os.Stdout)
}

func (lg *Logger) logf(level, format string, args ...interface{}) {
	lg.l.Printf("- "+level+" - "+format, args...)
}

// Infof logs progress, counts and completed work.
func (lg *Logger) Infof(format string, args ...interface{}) {
	lg.logf(LevelInfo, format, args...)
}

// Warnf logs conditions that are absorbed, like a missing optional input.
func (lg *Logger) Warnf(format string, args ...interface{}) {
	lg.logf(LevelWarning, format, args...)
}

// Errorf logs failures and missing required inputs.
func (lg *Logger) Errorf(format string, args ...interface{}) {
	lg.logf(LevelError, format, args...)
}
