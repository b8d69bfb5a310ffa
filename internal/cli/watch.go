package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/arbor/internal/presentation/tui"
)

// clearScreen is the ANSI sequence for "clear and move home".
const clearScreen = "\033[H\033[2J"

// RunWatch renders the site and re-renders it whenever its templates
// change, until ctx ends.
func RunWatch(ctx context.Context, opts Options, w io.Writer) error {
	logger := createLogger(opts)
	site, err := createSite(opts, logger)
	if err != nil {
		return err
	}
	defer site.Close()

	if isTerminal(w) {
		tui.PrintBanner(w)
	}

	changes, err := site.Manager.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("Starting watcher", "dir", opts.Dir)

	show := func() {
		out, err := renderSite(ctx, site, opts)
		if isTerminal(w) {
			fmt.Fprint(w, clearScreen)
		}
		if err != nil {
			logger.Error("Render failed", "err", err)
			printSystemMessage(w, "Render failed: %v", err)
			return
		}
		if err := write(w, out, opts); err != nil {
			logger.Error("Write failed", "err", err)
		}
		printSystemMessage(w, "Waiting for changes...")
	}
	show()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			// Let the filesystem settle before reading again.
			time.Sleep(100 * time.Millisecond)
			logger.Info("Change detected, re-rendering")
			show()
		}
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\n%s %s\n", tui.Highlight(">>>"), fmt.Sprintf(format, args...))
}
