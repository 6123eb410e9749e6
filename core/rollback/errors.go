package rollback

import "errors"

var (
	// ErrNilRegistry is returned when a coordinator is created without a
	// plugin registry.
	ErrNilRegistry = errors.New("plugin registry is required")

	// ErrNilConfig is returned when a coordinator is created without the
	// engine configuration.
	ErrNilConfig = errors.New("configuration is required")

	// ErrInstallerRestart is returned when checkpoints were reverted but the
	// installer failed to restart, so the running service may still use the
	// undone configuration.
	ErrInstallerRestart = errors.New("installer failed to restart after rollback")
)
