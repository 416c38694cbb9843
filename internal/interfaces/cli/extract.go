package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newExtractCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract citations from one patent XML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.runner.ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			res := report.Result
			articles, accessions, standards := res.Catalog.Counts()
			fmt.Fprintf(cmd.OutOrStdout(),
				"Processed %s: %d paragraphs, %d articles, %d accessions, %d standards (%s)\n",
				args[0], res.Paragraphs, articles, accessions, standards,
				res.Duration.Truncate(time.Millisecond))
			if report.OutputPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Citation catalog written to %s\n", report.OutputPath)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No citations found, no output file generated")
			}
			return nil
		},
	}
}
