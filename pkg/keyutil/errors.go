package keyutil

import "errors"

var (
	// ErrUnsupportedKeySize is returned when the requested RSA key size has no
	// matching key type at the certificate authority.
	ErrUnsupportedKeySize = errors.New("unsupported RSA key size")

	// ErrNoDomains is returned when a CSR is requested without domains.
	ErrNoDomains = errors.New("at least one domain is required")

	// ErrNilKey is returned when a CSR is requested without a signing key.
	ErrNilKey = errors.New("signing key is required")
)
