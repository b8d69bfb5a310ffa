package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer formats rendered layout output as markdown for the
// terminal.
type MarkdownRenderer struct {
	r *glamour.TermRenderer
}

// NewMarkdownRenderer picks a light or dark style from the terminal
// background. A wrap of 0 keeps glamour's default width.
func NewMarkdownRenderer(wrap int) (*MarkdownRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &MarkdownRenderer{r: r}, nil
}

func (m *MarkdownRenderer) Render(markdown string) (string, error) {
	return m.r.Render(markdown)
}
