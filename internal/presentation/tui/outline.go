// Package tui renders pages for the terminal.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// Outline writes the page as a markdown document: a heading, the params
// and a nested list of components with their props.
func Outline(page *schema.PageData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", page.ID)

	if len(page.Params) > 0 {
		sb.WriteString("## Params\n\n")
		for _, k := range sortedKeys(page.Params) {
			fmt.Fprintf(&sb, "- `%s`: %v\n", k, page.Params[k])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Components\n\n")
	root := page.Root()
	if root.IsEmpty() {
		sb.WriteString("_empty page_\n")
		return sb.String()
	}
	count := 0
	root.Walk(func(c *schema.ComponentSchema, depth int) bool {
		count++
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&sb, "%s- **%s**", indent, c.ComponentName)
		if c.ID != "" {
			fmt.Fprintf(&sb, " `%s`", c.ID)
		}
		if c.Condition != nil {
			sb.WriteString(" _(conditional)_")
		}
		if c.Loop != nil {
			sb.WriteString(" _(loop)_")
		}
		sb.WriteString("\n")
		for _, k := range sortedKeys(c.Props) {
			fmt.Fprintf(&sb, "%s  - %s = %s\n", indent, k, short(c.Props[k]))
		}
		return true
	})
	fmt.Fprintf(&sb, "\n%d components\n", count)
	return sb.String()
}

func short(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
