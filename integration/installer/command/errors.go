package command

import "errors"

var (
	// ErrNilStore is returned when the installer is constructed without a checkpoint store.
	ErrNilStore = errors.New("checkpoint store is required")

	// ErrEmptyPath is returned when Apply is given a blank destination path.
	ErrEmptyPath = errors.New("config path is required")
)
