// Package logging provides the thin structured logger used by the CLI.
// The codec package itself
// performs no logging; this exists only for the ambient/domain stack
// that wraps it.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logfmt/logfmt"
)

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger emits logfmt-encoded "level=... msg=... key=val ..." lines to
// an underlying writer (stderr by default). A single Logger is safe for
// concurrent use: Log holds its mutex while encoding each line.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	enc     *logfmt.Encoder
	context []interface{}
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, enc: logfmt.NewEncoder(w)}
}

// With returns a Logger that prepends the given key/value pairs to every
// line it emits, e.g. a per-run identifier attached once at startup
// rather than threaded through every call site.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	context := make([]interface{}, 0, len(l.context)+len(keyvals))
	context = append(context, l.context...)
	context = append(context, keyvals...)
	return &Logger{w: l.w, enc: logfmt.NewEncoder(l.w), context: context}
}

// Default is a Logger writing to os.Stderr, the destination the CLI
// uses unless told otherwise.
var Default = New(os.Stderr)

// Log emits one line at the given level with msg plus an even number of
// alternating key/value keyvals. A malformed (odd-length) keyvals list
// is logged as-is with a trailing "(MISSING)" value, matching logfmt's
// own tolerant-encode behavior rather than panicking.
func (l *Logger) Log(level Level, msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := append([]interface{}{"level", string(level), "msg", msg}, l.context...)
	fields = append(fields, keyvals...)
	if len(fields)%2 != 0 {
		fields = append(fields, "(MISSING)")
	}

	if err := l.enc.EncodeKeyvals(fields...); err != nil {
		fmt.Fprintf(os.Stderr, "logging: encode failure: %v\n", err)
		return
	}
	if err := l.enc.EndRecord(); err != nil {
		fmt.Fprintf(os.Stderr, "logging: end-record failure: %v\n", err)
	}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.Log(LevelDebug, msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.Log(LevelInfo, msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.Log(LevelWarn, msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.Log(LevelError, msg, keyvals...) }
