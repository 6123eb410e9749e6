package standalone

import (
	"log/slog"
	"strings"
)

// Option configures a Solver.
type Option func(*options)

type options struct {
	address     string
	proxyHeader string
	logger      *slog.Logger
}

// WithAddress sets the bind address for the challenge listener (host:port).
// An empty host binds every interface. Default: ":80".
func WithAddress(addr string) Option {
	return func(o *options) {
		o.address = strings.TrimSpace(addr)
	}
}

// WithProxyHeader sets the header the listener inspects for host matching
// when validation traffic arrives through a proxy (e.g. X-Forwarded-Host).
func WithProxyHeader(header string) Option {
	return func(o *options) {
		if h := strings.TrimSpace(header); h != "" {
			o.proxyHeader = h
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
