package main

import (
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the templates the site can resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Templates(cmd.Context(), readOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
