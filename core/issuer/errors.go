package issuer

import "errors"

var (
	// ErrNilConfig is returned when no configuration is supplied.
	ErrNilConfig = errors.New("configuration is required")

	// ErrNilStore is returned when registration is attempted without an
	// account store.
	ErrNilStore = errors.New("account store is required")

	// ErrNilClientFactory is returned when registration is attempted without
	// a protocol client factory.
	ErrNilClientFactory = errors.New("protocol client factory is required")

	// ErrNilClient is returned when an issuer is created without a protocol
	// client.
	ErrNilClient = errors.New("protocol client is required")

	// ErrNilAuthorizer is returned when an issuer is created without an
	// authorization getter.
	ErrNilAuthorizer = errors.New("authorization getter is required")

	// ErrTermsDeclined is returned when the terms-of-service callback rejects
	// the authority's terms; nothing is registered or persisted.
	ErrTermsDeclined = errors.New("terms of service were declined")

	// ErrNilCSR is returned when issuance is requested without a signing
	// request.
	ErrNilCSR = errors.New("certificate signing request is required")

	// ErrNoDomains is returned when a certificate is requested for no domains.
	ErrNoDomains = errors.New("at least one domain is required")

	// ErrEmptyDomain is returned when a requested domain is blank.
	ErrEmptyDomain = errors.New("domain name is empty")

	// ErrInvalidDomain is returned when a requested domain is not a valid DNS
	// name.
	ErrInvalidDomain = errors.New("invalid domain name")

	// ErrDuplicateDomain is returned when the same domain is requested twice.
	ErrDuplicateDomain = errors.New("duplicate domain in request")

	// ErrNoCertificate is returned when a result carries no issued
	// certificate to save or install.
	ErrNoCertificate = errors.New("result carries no certificate")

	// ErrInvalidName is returned when a live certificate name would escape
	// the live directory.
	ErrInvalidName = errors.New("certificate name is not a safe directory name")
)
