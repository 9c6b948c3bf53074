package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/adapters/file"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/adapters/sql"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := openStore(config.StoreConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)

	s, err = openStore(config.StoreConfig{Backend: config.BackendFile, Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, s)

	s, err = openStore(config.StoreConfig{Backend: config.BackendSQLite, Path: dir})
	require.NoError(t, err)
	assert.IsType(t, &sql.Store{}, s)
	require.NoError(t, s.(*sql.Store).Close())
	assert.FileExists(t, filepath.Join(dir, "pages.db"))

	_, err = openStore(config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}

func TestStoreMiddlewares(t *testing.T) {
	mws, err := storeMiddlewares(config.StoreConfig{})
	require.NoError(t, err)
	assert.Empty(t, mws)

	mws, err = storeMiddlewares(config.StoreConfig{
		MaskProps:     []string{"(?i)token"},
		EncryptionKey: "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE=",
	})
	require.NoError(t, err)
	assert.Len(t, mws, 2)
}

func TestNewEditor_LoadsPrototypeBundles(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "basic.yaml")
	require.NoError(t, os.WriteFile(bundle, []byte(`
- componentName: Page
  container: true
- componentName: Text
  props:
    - name: content
      valueType: string
`), 0644))

	c := config.Default()
	c.Store = config.StoreConfig{Backend: config.BackendMemory}
	c.Prototypes = []string{bundle}

	ed, err := newEditor(context.Background(), c, logging.NewNop())
	require.NoError(t, err)
	defer ed.Close()
	assert.Equal(t, []string{"Page", "Text"}, ed.Registry().Names())
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, file.New(dir).Save(context.Background(), &schema.PageData{
		ID: "home",
		ComponentsTree: []*schema.ComponentSchema{{
			ID: "root", ComponentName: "Page",
			Children: []*schema.ComponentSchema{{ID: "t", ComponentName: "Text", Props: map[string]any{"content": "Hi"}}},
		}},
	}))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export-html", "home", "--store", "file", "--store-path", dir, "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `<div data-component="Text" data-node-id="t">Hi</div>`)
}
