package account

import "errors"

var (
	// ErrNoAccount is returned when no account has been persisted yet.
	ErrNoAccount = errors.New("no account found")

	// ErrNilAccount is returned when a nil account is passed to Save.
	ErrNilAccount = errors.New("nil account")

	// ErrMissingKey is returned when an account is saved without a private key.
	ErrMissingKey = errors.New("account private key is required")

	// ErrMissingRegistration is returned when an account is saved without
	// registration data from the authority.
	ErrMissingRegistration = errors.New("account registration is required")
)
