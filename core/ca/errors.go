package ca

import "errors"

var (
	// ErrMissingDirectoryURL is returned when the client is constructed without an ACME directory URL.
	ErrMissingDirectoryURL = errors.New("ACME directory URL is required")

	// ErrMissingAccountKey is returned when the client is constructed without an account key.
	ErrMissingAccountKey = errors.New("account key is required")

	// ErrIssuanceRejected is returned when the certificate authority rejects an
	// issuance request (malformed CSR, rate limit, policy refusal).
	ErrIssuanceRejected = errors.New("certificate authority rejected issuance")

	// ErrNoAuthorizations is returned when issuance is requested without any authorizations.
	ErrNoAuthorizations = errors.New("issuance requires at least one authorization")

	// ErrEmptyCSR is returned when issuance is requested with an empty certificate request.
	ErrEmptyCSR = errors.New("certificate signing request is empty")

	// ErrMissingCertificateURL is returned when a certificate resource has no
	// authority URL to fetch the chain from.
	ErrMissingCertificateURL = errors.New("certificate resource has no certificate URL")
)
