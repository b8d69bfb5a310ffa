package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner to w, colored for the terminal's
// profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{`    _         _`, "#34d399"},
		{`   / \   _ __| |__   ___  _ __`, "#2dd4bf"},
		{`  / _ \ | '__| '_ \ / _ \| '__|`, "#22d3ee"},
		{` / ___ \| |  | |_) | (_) | |`, "#38bdf8"},
		{`/_/   \_\_|  |_.__/ \___/|_|`, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Highlight colors s as an accent when the terminal supports it.
func Highlight(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Foreground(p.Color("#34d399")).Bold().String()
}
