package html_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"

	"github.com/aretw0/pagecraft/internal/presentation/html"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func page() *schema.PageData {
	return &schema.PageData{
		ID: "home",
		ComponentsTree: []*schema.ComponentSchema{{
			ID:            "root",
			ComponentName: "Page",
			Children: []*schema.ComponentSchema{
				{ID: "t1", ComponentName: "Text", Props: map[string]any{
					"content": "Hello <world>",
					"level":   2.0,
					"style":   map[string]any{"color": "red"},
				}},
				{ID: "b1", ComponentName: "Button", Props: map[string]any{"disabled": true}},
			},
		}},
	}
}

func TestExport(t *testing.T) {
	out, err := html.Export(page(), html.WithTags(map[string]string{"Button": "button"}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>home</title>")
	assert.Contains(t, out, `<div data-component="Page" data-node-id="root">`)
	assert.Contains(t, out, `<div data-component="Text" data-node-id="t1" data-prop-level="2">Hello &lt;world&gt;</div>`)
	assert.Contains(t, out, `<button data-component="Button" data-node-id="b1" data-prop-disabled="true"></button>`)
	assert.NotContains(t, out, "data-prop-style", "nested props are skipped")
}

func TestExport_ParsesBack(t *testing.T) {
	out, err := html.Export(page())
	require.NoError(t, err)

	doc, err := xhtml.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var ids []string
	var visit func(n *xhtml.Node)
	visit = func(n *xhtml.Node) {
		for _, a := range n.Attr {
			if a.Key == "data-node-id" {
				ids = append(ids, a.Val)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	assert.Equal(t, []string{"root", "t1", "b1"}, ids)
}

func TestExport_NilPage(t *testing.T) {
	_, err := html.Export(nil)
	assert.Error(t, err)
}

func TestExport_EmptyPage(t *testing.T) {
	out, err := html.Export(&schema.PageData{ID: "blank"})
	require.NoError(t, err)
	assert.NotContains(t, out, "data-component")
}
