package page

import (
	"errors"

	"github.com/aretw0/pagecraft/pkg/ports"
)

var (
	// ErrReservedAddon is returned when an addon uses a name that page data
	// already owns.
	ErrReservedAddon = errors.New("addon name is reserved")
	// ErrPageNotFound is returned when a page is not part of the collection.
	ErrPageNotFound = ports.ErrPageNotFound
	// ErrInvalidSnapshot is returned when history data cannot be replayed.
	ErrInvalidSnapshot = errors.New("invalid page snapshot")
)
