package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/require"

	loamstore "github.com/aretw0/pagecraft/pkg/adapters/loam"
	"github.com/aretw0/pagecraft/pkg/prop"
	"github.com/aretw0/pagecraft/pkg/prototype"
)

// SetupTestVault creates a temporary directory and opens a Loam page store
// in it. It returns the absolute path to the temp dir and the store.
// It fails the test immediately on error.
func SetupTestVault(t *testing.T, opts ...loam.Option) (string, *loamstore.Store) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	if len(opts) == 0 {
		opts = []loam.Option{loam.WithVersioning(false)}
	}
	store, err := loamstore.Open(absPath, opts...)
	require.NoError(t, err, "Failed to init loam vault")
	return absPath, store
}

// Prototypes declares a container Page and a Text with a string content
// prop.
func Prototypes() []prototype.Prototype {
	return []prototype.Prototype{
		prototype.Declare(prototype.Definition{ComponentName: "Page", Container: true}),
		prototype.Declare(prototype.Definition{
			ComponentName: "Text",
			Props:         []prop.Config{{Name: "content", ValueType: "string"}},
		}),
	}
}
