// Package klog wraps log/slog for the kernel's boot and diagnostic log
// lines. It is deliberately not used inside the tick handler: a
// slog.Logger call can allocate through its handler, and the tick
// handler runs under the same no-allocation constraint the teacher's
// trapstub documents for interrupt context.
package klog

import (
	"io"
	"log/slog"
)

// Logger is a thin handle around *slog.Logger, kept separate so call
// sites in this module don't need to import log/slog directly.
type Logger struct {
	s *slog.Logger
}

// New builds a Logger writing text-formatted records to w.
func New(w io.Writer) *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(w, nil))}
}

// Nop returns a Logger that discards everything, for tests and threads
// that never log.
func Nop() *Logger {
	return New(io.Discard)
}

func (l *Logger) Boot(msg string, args ...any) {
	if l == nil {
		return
	}
	l.s.Info(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.s.Debug(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.s.Warn(msg, args...)
}
