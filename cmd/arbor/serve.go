package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Renders the layout and exposes it over HTTP: rendered output, region updates, snapshots, SSE diffs and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)
		readLayoutOptions(cmd, &opts)
		port, _ := cmd.Flags().GetString("port")

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, opts, ":"+port, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addLayoutFlags(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
