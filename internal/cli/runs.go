package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf/internal/store"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored runs, or the streams of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts, db)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				return listStreams(cmd, rootOpts, st, args[0])
			}

			return listRuns(cmd, rootOpts, st)
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "store path (default store.path from the config)")

	return cmd
}

func listRuns(cmd *cobra.Command, opts *RootOptions, st *store.Store) error {
	runs, err := st.Runs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), runs)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDEVICE\tEPOCH\tTICK US\tACTIVE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", r.UUID, r.DeviceUID, r.EpochTimeS, r.TickBaseUs, r.Active)
	}

	return tw.Flush()
}

func listStreams(cmd *cobra.Command, opts *RootOptions, st *store.Store, runID string) error {
	streams, err := st.Streams(cmd.Context(), runID)
	if err != nil {
		return WrapExitError(ExitFailure, "list streams", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), streams)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSTREAM\tSAMPLES\tFIRST\tLAST")
	for _, s := range streams {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", s.Kind, s.StreamID, s.Count, s.FirstTick, s.LastTick)
	}

	return tw.Flush()
}
