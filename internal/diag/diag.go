// Package diag provides lightweight diagnostic logging for non-fatal
// decoder conditions: observed checksum mismatches and downgraded extern
// fields (spec SPEC_FULL.md §4.9); LRU evictions are not logged. It wraps the
// standard library's log.Logger, matching the teacher's own use of plain
// log.Printf in its storage layer rather than pulling in a structured
// logging dependency.
package diag

import (
	"io"
	"log"
)

// Logger is a thin wrapper so callers can swap in their own *log.Logger.
type Logger struct {
	l *log.Logger
}

// New wraps an existing standard-library logger.
func New(l *log.Logger) *Logger {
	return &Logger{l: l}
}

// Default constructs a Logger writing to the standard logger's default
// destination (os.Stderr) with the standard flags.
func Default() *Logger {
	return &Logger{l: log.New(log.Writer(), "innodbrecover: ", log.LstdFlags)}
}

// Discard constructs a Logger that drops everything, for callers that
// don't want diagnostic output.
func Discard() *Logger {
	return &Logger{l: log.New(io.Discard, "", 0)}
}

// Printf logs a formatted diagnostic message.
func (d *Logger) Printf(format string, args ...interface{}) {
	if d == nil || d.l == nil {
		return
	}
	d.l.Printf(format, args...)
}
