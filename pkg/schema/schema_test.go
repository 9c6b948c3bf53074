package schema

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageJSON = `{
  "id": "home",
  "componentsTree": [{
    "componentName": "Page",
    "props": {"title": "Home"},
    "css": "body { color: red }",
    "children": [
      {"id": "t1", "componentName": "Text", "props": {"content": "hi"}, "loop": [1, 2], "loopArgs": ["item"]}
    ]
  }],
  "params": {"theme": "dark"},
  "i18n": {"en": {}}
}`

func TestParsePage_JSON(t *testing.T) {
	page, err := ParsePage([]byte(pageJSON))
	require.NoError(t, err)

	assert.Equal(t, "home", page.ID)
	root := page.Root()
	assert.Equal(t, "Page", root.ComponentName)
	assert.Equal(t, "body { color: red }", root.Addons["css"])
	require.Len(t, root.Children, 1)
	assert.Equal(t, "t1", root.Children[0].ID)
	assert.Equal(t, []string{"item"}, root.Children[0].LoopArgs)
	assert.Equal(t, map[string]any{"theme": "dark"}, page.Params)
	assert.Contains(t, page.Addons, "i18n")
}

func TestParsePage_YAML(t *testing.T) {
	doc := `
id: landing
props:
  title: Landing
children:
  - componentName: Button
    props:
      label: Go
`
	page, err := ParsePage([]byte(doc))
	require.NoError(t, err)

	root := page.Root()
	assert.Equal(t, "", root.ComponentName)
	assert.Equal(t, "Landing", root.Props["title"])
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Button", root.Children[0].ComponentName)
}

func TestParsePage_Malformed(t *testing.T) {
	_, err := ParsePage([]byte("   "))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = ParsePage([]byte("{not json"))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestComponentSchema_JSONKeepsAddons(t *testing.T) {
	in := &ComponentSchema{
		ComponentName: "Card",
		Props:         map[string]any{"title": "x"},
		Addons:        map[string]any{"state": map[string]any{"open": true}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ComponentSchema
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Card", out.ComponentName)
	assert.Equal(t, map[string]any{"open": true}, out.Addons["state"])
	assert.NotContains(t, out.Addons, "componentName")
}

func TestComponentSchema_CloneIsDeep(t *testing.T) {
	in := &ComponentSchema{
		ComponentName: "Box",
		Props:         map[string]any{"style": map[string]any{"w": 1}},
		Children:      []*ComponentSchema{{ComponentName: "Text"}},
	}
	out := in.Clone()
	out.Props["style"].(map[string]any)["w"] = 2
	out.Children[0].ComponentName = "Image"

	assert.Equal(t, 1, in.Props["style"].(map[string]any)["w"])
	assert.Equal(t, "Text", in.Children[0].ComponentName)
}

func TestComponentSchema_Walk(t *testing.T) {
	root := &ComponentSchema{ComponentName: "Page", Children: []*ComponentSchema{
		{ComponentName: "Box", Children: []*ComponentSchema{{ComponentName: "Text"}}},
		{ComponentName: "Image"},
	}}
	var names []string
	root.Walk(func(c *ComponentSchema, depth int) bool {
		names = append(names, c.ComponentName)
		return c.ComponentName != "Box"
	})
	assert.Equal(t, []string{"Page", "Box", "Image"}, names)
}

func TestLoadPage_DefaultsIDToFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "about.yaml")
	require.NoError(t, os.WriteFile(path, []byte("componentsTree:\n  - componentName: Page\n"), 0o644))

	page, err := LoadPage(path)
	require.NoError(t, err)
	assert.Equal(t, "about", page.ID)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"string", "x", true},
		{"string", 1, false},
		{"int", 3.0, true},
		{"int", 3.5, false},
		{"number", 3.5, true},
		{"bool", true, true},
		{"object", map[string]any{}, true},
		{"array", []any{1}, true},
		{"[string]", []any{"a", "b"}, true},
		{"[string]", []any{"a", 2}, false},
		{"enum(left|right)", "left", true},
		{"enum(left|right)", "up", false},
		{"any", struct{}{}, true},
	}
	for _, tt := range tests {
		typ, err := ParseType(tt.name)
		require.NoError(t, err, tt.name)
		err = typ.Check(tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s %v", tt.name, tt.value)
		} else {
			assert.Error(t, err, "%s %v", tt.name, tt.value)
		}
	}

	_, err := ParseType("complex128")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	decls, err := ParseDeclarations(map[string]string{"label": "string", "size": "int"})
	require.NoError(t, err)

	assert.NoError(t, decls.Validate(map[string]any{"label": "ok", "size": 2, "extra": true}))
	assert.NoError(t, decls.Validate(map[string]any{"label": map[string]any{"type": "variable", "variable": "state.x"}}))

	err = decls.Validate(map[string]any{"label": 1, "size": "big"})
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.Equal(t, "label", agg.Errors[0].Prop)
}

func TestValidateTree(t *testing.T) {
	root := &ComponentSchema{ComponentName: "Page", Children: []*ComponentSchema{
		{ID: "b1", ComponentName: "Button", Props: map[string]any{"label": 5}},
		{ComponentName: "Unknown", Props: map[string]any{"label": 5}},
	}}
	resolve := func(name string) (Declarations, bool) {
		if name == "Button" {
			return Declarations{"label": StringType}, true
		}
		return nil, false
	}
	err := ValidateTree(root, resolve)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "/Page/Button#b1", verr.Path)
}

func TestComponentSchema_IsEmpty(t *testing.T) {
	var nilSchema *ComponentSchema
	assert.True(t, nilSchema.IsEmpty())
	assert.True(t, (&PageData{ID: "blank"}).Root().IsEmpty())
	assert.False(t, (&ComponentSchema{ComponentName: "Page"}).IsEmpty())
	assert.False(t, (&PageData{Children: []*ComponentSchema{{ComponentName: "Text"}}}).Root().IsEmpty())
}
