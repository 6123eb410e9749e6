package plugin

import "errors"

var (
	// ErrEmptyName is returned when a plugin is registered without a name.
	ErrEmptyName = errors.New("plugin name is required")

	// ErrNilFactory is returned when a plugin is registered without a factory.
	ErrNilFactory = errors.New("plugin factory is required")

	// ErrDuplicateName is returned when a plugin name is registered twice.
	ErrDuplicateName = errors.New("plugin name already registered")

	// ErrUnknownSolver is returned when no solver is registered under the
	// requested name.
	ErrUnknownSolver = errors.New("unknown solver")

	// ErrUnknownInstaller is returned when no installer is registered under
	// the requested name.
	ErrUnknownInstaller = errors.New("unknown installer")

	// ErrAmbiguousInstaller is returned when no installer name was given and
	// more than one is registered.
	ErrAmbiguousInstaller = errors.New("multiple installers registered, name one explicitly")
)
