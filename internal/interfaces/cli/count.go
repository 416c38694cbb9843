package cli

import (
	"github.com/spf13/cobra"

	"github.com/brankow/citation-extraction/internal/pipeline"
)

// newCountCmd counts pre-tagged <nplcit citations without touching the LLM,
// so it needs no configuration at all.
func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count DIR",
		Short: "Count <nplcit> citations in every XML file of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, total, err := pipeline.CountCitations(args[0])
			if err != nil {
				return err
			}
			pipeline.WriteCountTable(cmd.OutOrStdout(), counts, total)
			return nil
		},
	}
}
