package authz

import "errors"

var (
	// ErrAuthorizationFailed is returned when the authority reports a domain's
	// validation as failed, or a challenge cannot be presented or accepted.
	ErrAuthorizationFailed = errors.New("domain authorization failed")

	// ErrAuthorizationTimeout is returned when an authorization stays pending
	// past the polling deadline.
	ErrAuthorizationTimeout = errors.New("domain authorization timed out")

	// ErrNoViableChallenge is returned when the authority offers no challenge
	// type the configured solver supports.
	ErrNoViableChallenge = errors.New("no viable challenge for solver")

	// ErrNoDomains is returned when authorization is requested without domains.
	ErrNoDomains = errors.New("at least one domain is required")

	// ErrEmptyDomain is returned when the domain list contains an empty entry.
	ErrEmptyDomain = errors.New("empty domain name")

	// ErrDuplicateDomain is returned when the domain list repeats an entry.
	// De-duplication is the caller's responsibility.
	ErrDuplicateDomain = errors.New("duplicate domain name")

	// ErrNilClient is returned when the coordinator is constructed without a protocol client.
	ErrNilClient = errors.New("protocol client is required")

	// ErrNilSolver is returned when the coordinator is constructed without a challenge solver.
	ErrNilSolver = errors.New("challenge solver is required")
)
