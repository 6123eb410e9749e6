package standalone

import "errors"

var (
	// ErrInvalidAddress is returned when the listen address cannot be split into host and port.
	ErrInvalidAddress = errors.New("listen address is malformed")

	// ErrUnsupportedChallenge is returned when the solver receives a challenge type it cannot serve.
	ErrUnsupportedChallenge = errors.New("challenge type is not supported")
)
