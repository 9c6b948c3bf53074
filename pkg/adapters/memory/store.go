package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Store implements ports.PageStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*schema.PageData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*schema.PageData),
	}
}

// Save keeps a deep copy of page so later edits by the caller do not leak in.
func (s *Store) Save(ctx context.Context, page *schema.PageData) error {
	if page == nil || page.ID == "" {
		return fmt.Errorf("page id cannot be empty")
	}
	copied := page.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[page.ID] = copied
	return nil
}

// Load returns a copy of the stored page.
func (s *Store) Load(ctx context.Context, id string) (*schema.PageData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.data[id]
	if !ok {
		return nil, ports.ErrPageNotFound
	}
	return page.Clone(), nil
}

// Delete removes the page.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored page ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
