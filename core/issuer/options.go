package issuer

import "log/slog"

// Option configures an Issuer.
type Option func(*options)

type options struct {
	keys   KeySource
	logger *slog.Logger
}

// WithKeySource replaces the default key/CSR generator (pkg/keyutil).
func WithKeySource(keys KeySource) Option {
	return func(o *options) {
		if keys != nil {
			o.keys = keys
		}
	}
}

// WithLogger sets the logger for issuance operations.
// Default: no-op logger (discards all output).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
