package tui

import (
	"github.com/charmbracelet/glamour"
)

// Render turns an outline into terminal output.
type Render func(markdown string) (string, error)

func passthrough(markdown string) (string, error) { return markdown, nil }

// NewRenderer styles markdown with glamour when writing to a terminal,
// wrapping at width columns (0 keeps glamour's default). Off a terminal,
// or when glamour cannot start, the markdown is returned unchanged.
func NewRenderer(isTerminal bool, width int) Render {
	if !isTerminal {
		return passthrough
	}
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return passthrough
	}
	return r.Render
}
