package dns

import (
	"log/slog"
	"time"
)

// Option configures a Solver.
type Option func(*options)

type options struct {
	propagationWait time.Duration
	logger          *slog.Logger
}

// WithPropagationWait pauses Present after the record is planted, giving slow
// DNS backends time to propagate before the authority looks the record up.
// Default: no wait (the authority retries validation on its own).
func WithPropagationWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.propagationWait = d
		}
	}
}

// WithLogger sets the logger for solver operations.
// Default: no-op logger (discards all output).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
