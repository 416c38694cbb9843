package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBatchCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch DIR",
		Short: "Extract citations from every XML file in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.runner.RunBatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Batch complete: %d files processed, %d failed (%s)\n",
				len(report.Files), report.Failed, report.Duration.Truncate(time.Millisecond))
			return nil
		},
	}
}

func newWatchCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Watch a folder and extract citations from XML files dropped into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			// Blocks until the signal context is canceled.
			err = a.runner.Watch(cmd.Context(), args[0])
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}
