package node

import "errors"

var (
	// ErrRootImmutable is returned for structural edits the root refuses.
	ErrRootImmutable = errors.New("root node cannot be moved, removed or cloned")
	// ErrUnknownAddon is returned when registering an addon outside the
	// supported set.
	ErrUnknownAddon = errors.New("unknown addon")
	// ErrAddonExists is returned when an addon is registered twice.
	ErrAddonExists = errors.New("addon already registered")
	// ErrInvalidSnapshot is returned for hot data without the node shape.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
