package prototype

import "errors"

var (
	// ErrPrototypeNotFound is returned when no prototype is registered
	// under a component name.
	ErrPrototypeNotFound = errors.New("prototype not found")
	// ErrDuplicatePrototype is returned by a load that resolves the same
	// component name twice.
	ErrDuplicatePrototype = errors.New("duplicate prototype")
)
