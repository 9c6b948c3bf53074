package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pagecraft/pkg/schema"
)

func TestOutline(t *testing.T) {
	page := &schema.PageData{
		ID:     "home",
		Params: map[string]any{"theme": "dark"},
		ComponentsTree: []*schema.ComponentSchema{{
			ID:            "root",
			ComponentName: "Page",
			Children: []*schema.ComponentSchema{
				{ID: "t1", ComponentName: "Text", Props: map[string]any{"content": strings.Repeat("x", 60)}},
				{ID: "c1", ComponentName: "Card", Condition: "user.loggedIn"},
			},
		}},
	}

	out := Outline(page)
	assert.Contains(t, out, "# home\n")
	assert.Contains(t, out, "- `theme`: dark")
	assert.Contains(t, out, "- **Page** `root`\n")
	assert.Contains(t, out, "  - **Text** `t1`\n")
	assert.Contains(t, out, "    - content = "+strings.Repeat("x", 37)+"...")
	assert.Contains(t, out, "  - **Card** `c1` _(conditional)_")
	assert.Contains(t, out, "3 components")
}

func TestOutline_EmptyPage(t *testing.T) {
	assert.Contains(t, Outline(&schema.PageData{ID: "blank"}), "_empty page_")
}

func TestNewRenderer_PlainWithoutTerminal(t *testing.T) {
	render := NewRenderer(false, 80)
	out, err := render("# title")
	assert.NoError(t, err)
	assert.Equal(t, "# title", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
