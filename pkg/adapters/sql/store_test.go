package sql_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlstore "github.com/aretw0/pagecraft/pkg/adapters/sql"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.OpenSQLite(filepath.Join(t.TempDir(), "data", "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_Contract(t *testing.T) {
	ports.RunPageStoreContract(t, openStore(t))
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.db")
	ctx := context.Background()

	first, err := sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, &schema.PageData{
		ID:             "home",
		ComponentsTree: []*schema.ComponentSchema{{ID: "root", ComponentName: "Page", Props: map[string]any{"title": "Hi"}}},
	}))
	require.NoError(t, first.Close())

	second, err := sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	page, err := second.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Hi", page.Root().Props["title"])
}

func TestSQLStore_NilDB(t *testing.T) {
	_, err := sqlstore.New(nil)
	assert.Error(t, err)
}
