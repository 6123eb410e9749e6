package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks,
// following the principle of making zero values useful.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Error Handling
// ============================================================================

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Performance and Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Certificate Domain Identifiers
// ============================================================================

// Domain creates an attribute for a single domain name under the key "domain".
// Returns empty Attr for an empty domain.
func Domain(domain string) slog.Attr {
	if domain == "" {
		return slog.Attr{}
	}
	return slog.String("domain", domain)
}

// Domains creates an attribute for a domain list under the key "domains".
// Returns empty Attr for an empty list.
func Domains(domains []string) slog.Attr {
	if len(domains) == 0 {
		return slog.Attr{}
	}
	return slog.Any("domains", domains)
}

// Checkpoint creates an attribute for a checkpoint identifier.
// Returns empty Attr for an empty id.
func Checkpoint(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("checkpoint", id)
}
