package prototype

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) ComponentName() string { return string(n) }

const bundleYAML = `
components:
  - componentName: Box
    container: true
    accepts: [Text, Button]
    props:
      - name: padding
        valueType: int
        defaultValue: 4
  - componentName: Text
    inline: true
    parents: [Box]
    props:
      - name: content
        valueType: string
      - name: style
        type: composite
        items:
          - name: color
  - componentName: Dialog
    container: true
    modal: true
    draggable: false
`

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions([]byte(bundleYAML))
	require.NoError(t, err)
	require.Len(t, defs, 3)

	box := Declare(defs[0])
	assert.True(t, box.IsContainer())
	assert.True(t, box.CanDropIn(named("Text")))
	assert.False(t, box.CanDropIn(named("Image")))
	require.Len(t, box.Configure(), 1)
	assert.Equal(t, 4, box.Configure()[0].DefaultValue)

	text := Declare(defs[1])
	inline, known := text.IsInline()
	assert.True(t, inline)
	assert.True(t, known)
	assert.False(t, text.CanDropIn(named("Text")))
	assert.True(t, text.CanDropTo(named("Box")))
	assert.False(t, text.CanDropTo(named("Page")))

	dialog := Declare(defs[2])
	assert.True(t, dialog.IsModal())
	assert.False(t, dialog.CanDragging(nil))
	assert.True(t, dialog.CanSelecting(nil))
	_, known = dialog.IsInline()
	assert.False(t, known)
}

func TestParseDefinitions_Malformed(t *testing.T) {
	_, err := ParseDefinitions([]byte("- title: no name"))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte("just a string"))
	assert.Error(t, err)
}

func TestDeclared_Declarations(t *testing.T) {
	defs, err := ParseDefinitions([]byte(bundleYAML))
	require.NoError(t, err)

	decls, err := Declare(defs[1]).Declarations()
	require.NoError(t, err)
	assert.Contains(t, decls, "content")
	assert.Contains(t, decls, "style")
	assert.Error(t, decls.Validate(map[string]any{"content": 3}))
}

func TestDeclared_Hooks(t *testing.T) {
	var dropped []string
	p := Declare(Definition{ComponentName: "List", Container: true}).WithHooks(Hooks{
		ToStatic:  func(props map[string]any) map[string]any { props["static"] = true; return props },
		DidDropIn: func(_, d Target) { dropped = append(dropped, d.ComponentName()) },
	})

	assert.Equal(t, map[string]any{"static": true}, p.TransformToStatic(map[string]any{}))
	assert.Equal(t, map[string]any{"a": 1}, p.TransformToActive(map[string]any{"a": 1}))
	p.DidDropIn(p, named("Item"))
	p.DidDropOut(p, named("Item"))
	assert.Equal(t, []string{"Item"}, dropped)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	var changed []string
	r.OnChange(func(names []string) { changed = append(changed, names...) })

	r.Register(Declare(Definition{ComponentName: "Button"}))
	p, err := r.Lookup("Button")
	require.NoError(t, err)
	assert.Equal(t, "Button", p.Title())
	assert.Equal(t, []string{"Button"}, changed)

	_, err = r.Lookup("Missing")
	assert.True(t, errors.Is(err, ErrPrototypeNotFound))
}

func TestRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.yaml"), []byte(bundleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte("componentName: Image\n"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), DirLoader(dir), "basic", "extra"))
	assert.Equal(t, []string{"Box", "Dialog", "Image", "Text"}, r.Names())
}

func TestRegistry_LoadFailureRegistersNothing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.yaml"), []byte(bundleYAML), 0o644))

	r := NewRegistry()
	err := r.Load(context.Background(), DirLoader(dir), "basic", "missing")
	require.Error(t, err)
	assert.Empty(t, r.Names())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte("componentName: Box\n"), 0o644))
	err = r.Load(context.Background(), DirLoader(dir), "basic", "dup")
	assert.True(t, errors.Is(err, ErrDuplicatePrototype))
	assert.Empty(t, r.Names())
}
