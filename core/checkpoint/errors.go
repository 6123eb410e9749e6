package checkpoint

import "errors"

var (
	// ErrMissingDir is returned when a store is created without a directory.
	ErrMissingDir = errors.New("checkpoints directory is required")

	// ErrEmptyPath is returned when a snapshot request contains a blank path.
	ErrEmptyPath = errors.New("checkpoint path is empty")

	// ErrCheckpointIO is returned when reading or writing checkpoint data fails.
	ErrCheckpointIO = errors.New("checkpoint io failure")

	// ErrInsufficientCheckpoints is returned when a rollback asks for more
	// checkpoints than the stack holds.
	ErrInsufficientCheckpoints = errors.New("not enough checkpoints on the stack")

	// ErrCheckpointCorrupt is returned when a checkpoint's manifest or archived
	// content cannot be read back.
	ErrCheckpointCorrupt = errors.New("checkpoint is corrupt")
)
