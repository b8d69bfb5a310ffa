package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check templates and their references",
	Long:  `Crawls the site from its layout, reporting templates that fail to parse and references to templates that do not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)
		readLayoutOptions(cmd, &opts)
		return cli.Validate(cmd.Context(), opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addLayoutFlags(validateCmd)
}
