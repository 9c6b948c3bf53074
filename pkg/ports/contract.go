package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// RunPageStoreContract runs a suite of tests to verify that a PageStore
// implementation adheres to the interface contract.
func RunPageStoreContract(t *testing.T, store PageStore) {
	ctx := context.Background()
	pageID := "contract-page-" + time.Now().Format("20060102150405")

	sample := func(id string) *schema.PageData {
		return &schema.PageData{
			ID: id,
			ComponentsTree: []*schema.ComponentSchema{{
				ID:            "root",
				ComponentName: "Page",
				Props:         map[string]any{"title": "Home"},
				Children: []*schema.ComponentSchema{
					{ID: "t1", ComponentName: "Text", Props: map[string]any{"content": "hello"}},
				},
				Addons: map[string]any{"css": ".a{color:red}"},
			}},
			Params: map[string]any{"theme": "dark"},
			Addons: map[string]any{"i18n": map[string]any{"en": "Hello"}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, sample(pageID))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, pageID, loaded.ID)
		require.Len(t, loaded.ComponentsTree, 1)
		root := loaded.ComponentsTree[0]
		assert.Equal(t, "Page", root.ComponentName)
		assert.Equal(t, "Home", root.Props["title"])
		require.Len(t, root.Children, 1)
		assert.Equal(t, "hello", root.Children[0].Props["content"])
		assert.Equal(t, ".a{color:red}", root.Addons["css"])
		assert.Equal(t, "dark", loaded.Params["theme"])
		assert.NotNil(t, loaded.Addons["i18n"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		next := sample(pageID)
		next.Params["theme"] = "light"
		require.NoError(t, store.Save(ctx, next))

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err)
		assert.Equal(t, "light", loaded.Params["theme"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+pageID)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(pageID)))

		err := store.Delete(ctx, pageID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, pageID)
		assert.ErrorIs(t, err, ErrPageNotFound, "Load after Delete should return ErrPageNotFound")

		assert.NoError(t, store.Delete(ctx, pageID), "deleting twice is harmless")
	})

	t.Run("List", func(t *testing.T) {
		id1 := pageID + "-1"
		id2 := pageID + "-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		pages, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, pages, id1)
		assert.Contains(t, pages, id2)
	})
}
