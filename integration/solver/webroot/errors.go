package webroot

import "errors"

var (
	// ErrEmptyRoot is returned when the solver is constructed without a document root.
	ErrEmptyRoot = errors.New("webroot directory is required")

	// ErrMissingRoot is returned when the document root does not exist.
	ErrMissingRoot = errors.New("webroot directory does not exist")

	// ErrNotDirectory is returned when the webroot path points at a file.
	ErrNotDirectory = errors.New("webroot path is not a directory")

	// ErrInvalidToken is returned when a challenge token cannot be used as a file name.
	ErrInvalidToken = errors.New("challenge token is not a safe file name")

	// ErrUnsupportedChallenge is returned when the solver receives a challenge type it cannot satisfy.
	ErrUnsupportedChallenge = errors.New("challenge type is not supported")
)
