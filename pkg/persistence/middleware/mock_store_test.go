package middleware_test

import (
	"context"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// MockStore is a simple map-based store for testing middleware. It keeps
// the pointers it is given so tests can inspect what reached the store.
type MockStore struct {
	data map[string]*schema.PageData
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*schema.PageData),
	}
}

func (s *MockStore) Save(ctx context.Context, page *schema.PageData) error {
	s.data[page.ID] = page
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (*schema.PageData, error) {
	page, ok := s.data[id]
	if !ok {
		return nil, ports.ErrPageNotFound
	}
	return page, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.PageStore = (*MockStore)(nil)

func newPage(id string) *schema.PageData {
	return &schema.PageData{
		ID: id,
		ComponentsTree: []*schema.ComponentSchema{{
			ID:            "root",
			ComponentName: "Page",
			Children: []*schema.ComponentSchema{
				{ID: "f1", ComponentName: "Form", Props: map[string]any{"apiToken": "tok-123", "label": "Sign up"}},
			},
		}},
		Params: map[string]any{},
	}
}
