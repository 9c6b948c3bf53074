package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunPageStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	page := &schema.PageData{
		ID:             "home",
		ComponentsTree: []*schema.ComponentSchema{{ID: "root", ComponentName: "Page", Props: map[string]any{"title": "A"}}},
		Params:         map[string]any{},
	}
	require.NoError(t, store.Save(ctx, page))

	page.ComponentsTree[0].Props["title"] = "B"
	loaded, err := store.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.ComponentsTree[0].Props["title"])

	loaded.ComponentsTree[0].Props["title"] = "C"
	again, err := store.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "A", again.ComponentsTree[0].Props["title"])
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	store := memory.NewStore()
	assert.Error(t, store.Save(context.Background(), &schema.PageData{}))
}
