package command

import "log/slog"

// Option configures an Installer.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for installer operations.
// Default: no-op logger (discards all output).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
