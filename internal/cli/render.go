package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"golang.org/x/term"
)

// Render builds the site described by opts, renders its layout once and
// writes the output to w.
func Render(ctx context.Context, opts Options, w io.Writer) error {
	logger := createLogger(opts)
	site, err := createSite(opts, logger)
	if err != nil {
		return err
	}
	defer site.Close()

	out, err := renderSite(ctx, site, opts)
	if err != nil {
		return err
	}
	return write(w, out, opts)
}

func renderSite(ctx context.Context, site *Site, opts Options) (string, error) {
	mgr := site.Manager
	if err := mgr.Render(site.Props); err != nil {
		return "", err
	}
	if opts.Restore != "" {
		if err := mgr.Restore(ctx, opts.Restore); err != nil {
			return "", fmt.Errorf("restore %s: %w", opts.Restore, err)
		}
	}
	return mgr.Output()
}

// write prints out, formatted as markdown when asked to and w is a
// terminal.
func write(w io.Writer, out string, opts Options) error {
	if opts.Markdown && isTerminal(w) {
		width := 0
		if f, ok := w.(*os.File); ok {
			if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
				width = cols
			}
		}
		r, err := tui.NewMarkdownRenderer(width)
		if err != nil {
			return err
		}
		if out, err = r.Render(out); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, out)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
