// Package cli implements the citex command tree: single-file extraction,
// folder batches, directory watching, citation counting, and the API server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "citex",
		Short: "Citation extraction for patent application XML",
		Long: "citex extracts non-patent literature references, database accession\n" +
			"numbers, and technical standards from patent application XML using an\n" +
			"OpenAI-compatible LLM endpoint, and writes EPO-style citation catalogs.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: CITEX_* environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newExtractCmd(opts),
		newBatchCmd(opts),
		newWatchCmd(opts),
		newCountCmd(),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the CLI with the given base context, typically one that is
// canceled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
