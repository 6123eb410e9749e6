package renewal

import "errors"

var (
	// ErrNilConfig is returned when a nil renewal config is saved or reported.
	ErrNilConfig = errors.New("renewal config is nil")

	// ErrEmptyName is returned when a renewal config has no certificate name.
	ErrEmptyName = errors.New("renewal config name is required")

	// ErrInvalidName is returned when a certificate name cannot be used as a
	// file name.
	ErrInvalidName = errors.New("renewal config name contains path separators")

	// ErrMissingDir is returned when no renewal configs directory is set.
	ErrMissingDir = errors.New("renewal configs directory is required")

	// ErrNoDomains is returned when a renewal config covers no domains.
	ErrNoDomains = errors.New("renewal config has no domains")

	// ErrConfigNotFound is returned when no renewal config exists under the
	// requested name.
	ErrConfigNotFound = errors.New("renewal config not found")
)
