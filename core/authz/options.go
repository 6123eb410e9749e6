package authz

import (
	"log/slog"
	"time"
)

const (
	// DefaultMaxConcurrent bounds how many domains are validated at once.
	DefaultMaxConcurrent = 4

	// DefaultPollTimeout is how long a single authorization may stay pending.
	DefaultPollTimeout = 90 * time.Second

	// DefaultPollInterval is the initial delay between authorization polls;
	// subsequent polls back off exponentially.
	DefaultPollInterval = 2 * time.Second
)

// Option is a functional option for configuring the coordinator.
type Option func(*options)

type options struct {
	maxConcurrent int
	pollTimeout   time.Duration
	pollInterval  time.Duration
	logger        *slog.Logger
}

// WithMaxConcurrent bounds the number of domains validated in parallel.
func WithMaxConcurrent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithPollTimeout sets the per-domain deadline for the authorization to leave
// the pending state.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollTimeout = d
		}
	}
}

// WithPollInterval sets the initial delay between authorization polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
