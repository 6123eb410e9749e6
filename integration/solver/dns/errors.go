package dns

import "errors"

var (
	// ErrNilProvider is returned when the solver is constructed without a DNS provider.
	ErrNilProvider = errors.New("dns provider is required")

	// ErrMissingAPIToken is returned when the Cloudflare constructor receives an empty API token.
	ErrMissingAPIToken = errors.New("cloudflare api token is required")

	// ErrUnsupportedChallenge is returned when the solver receives a challenge type it cannot satisfy.
	ErrUnsupportedChallenge = errors.New("challenge type is not supported")
)
