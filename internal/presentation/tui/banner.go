package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pagecraft banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{`                                        __ _   `, "#34d399"},
		{`  _ __   __ _  __ _  ___  ___ _ __ __ _ / _| |_ `, "#2dd4bf"},
		{` | '_ \ / _' |/ _' |/ _ \/ __| '__/ _' | |_| __|`, "#22d3ee"},
		{` | |_) | (_| | (_| |  __/ (__| | | (_| |  _| |_ `, "#38bdf8"},
		{` | .__/ \__,_|\__, |\___|\___|_|  \__,_|_|  \__|`, "#60a5fa"},
		{` |_|          |___/                             `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a short status word: green for ok, red otherwise.
func Status(ok bool, text string) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(text).Foreground(p.Color(color)).Bold().String()
}
