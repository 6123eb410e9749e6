package config

import "errors"

var (
	// ErrNilConfig is returned when a nil configuration pointer is passed to Load.
	ErrNilConfig = errors.New("nil configuration pointer")

	// ErrMissingServer is returned when the ACME directory URL is empty.
	ErrMissingServer = errors.New("ACME directory URL is required")

	// ErrInvalidServer is returned when the ACME directory URL cannot be parsed.
	ErrInvalidServer = errors.New("ACME directory URL is invalid")

	// ErrMissingConfigDir is returned when the configuration directory is empty.
	ErrMissingConfigDir = errors.New("configuration directory is required")

	// ErrMissingWorkDir is returned when the working directory is empty.
	ErrMissingWorkDir = errors.New("working directory is required")

	// ErrKeySizeTooSmall is returned when the RSA key size is below the accepted minimum.
	ErrKeySizeTooSmall = errors.New("RSA key size is below the minimum")
)
