// Package graph draws a page's component tree as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// Overlay marks nodes of the outline.
type Overlay struct {
	Selected string
	Invalid  []string
}

// GenerateMermaid produces a Mermaid flowchart (graph TD) of the page tree.
// Shapes:
// - Root: ((Circle))
// - Node with children: [[Subroutine]]
// - Conditional or looped node: {{Hexagon}}
// - Default: [Rectangle]
func GenerateMermaid(page *schema.PageData, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := page.Root()
	if root.IsEmpty() {
		return sb.String()
	}

	root.Walk(func(c *schema.ComponentSchema, depth int) bool {
		safeID := sanitizeMermaidID(c.ID)
		opener, closer := "[", "]"
		switch {
		case c == root:
			opener, closer = "((", "))"
		case c.Condition != nil || c.Loop != nil:
			opener, closer = "{{", "}}"
		case len(c.Children) > 0:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(c), closer)

		for _, child := range c.Children {
			arrow := "-->"
			if child.Loop != nil {
				arrow = "-- \"loop\" -->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child.ID))
		}
		return true
	})

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Invalid {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s invalid;\n", safeID)
			}
		}
		if overlay.Selected != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func label(c *schema.ComponentSchema) string {
	text := c.ComponentName
	if c.ID != "" {
		text += " <br/> " + c.ID
	}
	return strings.ReplaceAll(text, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
