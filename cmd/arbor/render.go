package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [dir]",
	Short: "Render the layout once and print it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			opts.Dir = args[0]
		}
		readLayoutOptions(cmd, &opts)
		opts.Markdown, _ = cmd.Flags().GetBool("markdown")
		opts.Restore, _ = cmd.Flags().GetString("restore")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return cli.RunWatch(ctx, opts, os.Stdout)
		}
		return cli.Render(ctx, opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addLayoutFlags(renderCmd)
	renderCmd.Flags().Bool("markdown", false, "Format output as markdown on terminals")
	renderCmd.Flags().String("restore", "", "Apply a saved snapshot after rendering")
	renderCmd.Flags().BoolP("watch", "w", false, "Re-render whenever templates change")

	rootCmd.RunE = renderCmd.RunE
	addLayoutFlags(rootCmd)
	rootCmd.Flags().Bool("markdown", false, "Format output as markdown on terminals")
	rootCmd.Flags().String("restore", "", "Apply a saved snapshot after rendering")
	rootCmd.Flags().BoolP("watch", "w", false, "Re-render whenever templates change")
}
