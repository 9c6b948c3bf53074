package ports

import (
	"context"
	"errors"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// ErrPageNotFound is returned by Load when no page has the requested id.
var ErrPageNotFound = errors.New("page not found")

// PageStore persists page documents.
type PageStore interface {
	// Save persists page under page.ID, replacing any previous version.
	Save(ctx context.Context, page *schema.PageData) error

	// Load retrieves the page with the given id.
	// Returns ErrPageNotFound if the page does not exist.
	Load(ctx context.Context, id string) (*schema.PageData, error)

	// Delete removes the page. Deleting a missing page is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored page.
	List(ctx context.Context) ([]string, error)
}
