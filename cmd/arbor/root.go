package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a reactive layout manager for templates",
	Long: `Arbor renders a layout of named regions filled by templates.
Templates come from a Loam vault (--dir) or a YAML/JSON manifest (--manifest).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("dir", ".", "Directory containing the template vault")
	f.StringP("manifest", "m", "", "Site manifest (YAML or JSON); overrides --dir")
	f.Bool("debug", false, "Log lifecycle events to stderr")
	f.String("log-format", "text", "Debug log format: text or json")
	f.String("redis", "", "Redis URL for snapshots (redis://host:port/db)")
	f.String("redis-templates", "", "Redis hash holding template sources (requires --redis)")
	f.String("snapshots", ".arbor/snapshots", "Directory for file snapshots")
	f.String("snapshot-key", os.Getenv("ARBOR_SNAPSHOT_KEY"), "Base64 AES-256 key encrypting snapshots")
	f.StringArray("redact", nil, "Regexp of data keys masked in snapshots (repeatable)")
}

// readOptions collects the shared flags.
func readOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.Dir, _ = flags.GetString("dir")
	opts.Manifest, _ = flags.GetString("manifest")
	opts.Debug, _ = flags.GetBool("debug")
	opts.LogFormat, _ = flags.GetString("log-format")
	opts.RedisURL, _ = flags.GetString("redis")
	opts.RedisTemplates, _ = flags.GetString("redis-templates")
	opts.SnapshotDir, _ = flags.GetString("snapshots")
	opts.SnapshotKey, _ = flags.GetString("snapshot-key")
	opts.Redact, _ = flags.GetStringArray("redact")
	return opts
}

// addLayoutFlags registers the flags that shape the root layout.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("template", "t", "", "Top-level layout template")
	cmd.Flags().StringArrayP("region", "r", nil, "Region assignment region=template (repeatable)")
	cmd.Flags().String("data", "", "Layout data context as JSON")
	cmd.Flags().Bool("strict", false, "Fail on the first render error")
}

func readLayoutOptions(cmd *cobra.Command, opts *cli.Options) {
	flags := cmd.Flags()
	opts.Template, _ = flags.GetString("template")
	opts.Regions, _ = flags.GetStringArray("region")
	opts.Data, _ = flags.GetString("data")
	opts.Strict, _ = flags.GetBool("strict")
}
