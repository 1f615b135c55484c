package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/internal/store"
)

// IngestOptions holds the flags of the ingest command.
type IngestOptions struct {
	DB        string
	RunID     string
	DeviceUID string
	Active    bool
}

// IngestResult is the outcome of an ingest.
type IngestResult struct {
	RunID      string `json:"run_id"`
	Created    bool   `json:"created"`
	Polled     int    `json:"polled"`
	Events     int    `json:"events"`
	Duplicates int    `json:"duplicates,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest [run]",
		Short: "Store the samples of a run in the SQLite store",
		Long: `Decode a run and store its samples in the SQLite store.

Ingesting the same run id again only adds the samples written since the
previous ingest, so a run can be ingested periodically while it is recorded.
Without --run-id a new UUID is generated and printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, rootOpts, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.DB, "db", "", "store path (default store.path from the config)")
	flags.StringVar(&opts.RunID, "run-id", "", "run UUID (default a new UUID)")
	flags.StringVar(&opts.DeviceUID, "device", "", "device uid (default store.device_uid from the config)")
	flags.BoolVar(&opts.Active, "active", false, "mark the run as still being recorded")

	return cmd
}

func runIngest(cmd *cobra.Command, rootOpts *RootOptions, opts *IngestOptions, args []string) error {
	ctx := cmd.Context()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	} else if _, err := uuid.Parse(runID); err != nil {
		return WrapExitError(ExitUsage, fmt.Sprintf("invalid --run-id %q", runID), err)
	}

	device := opts.DeviceUID
	if device == "" {
		device = rootOpts.Config.Store.DeviceUID
	}

	src, name, err := rootOpts.openSource(args)
	if err != nil {
		return err
	}

	run, err := dlf.OpenRun(ctx, src)
	if err != nil {
		return WrapExitError(ExitFailure, "open run "+name, err)
	}

	st, err := openStore(rootOpts, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Ingest(ctx, store.IngestRequest{RunID: runID, DeviceUID: device, Active: opts.Active}, run)
	if err != nil {
		return WrapExitError(ExitFailure, "ingest "+name, err)
	}

	res := IngestResult{
		RunID:      runID,
		Created:    stats.Created,
		Polled:     stats.Polled,
		Events:     stats.Events,
		Duplicates: stats.Duplicates,
		Truncated:  stats.Truncated,
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}

	verb := "updated"
	if res.Created {
		verb = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s %s: %d polled samples, %d events\n", res.RunID, verb, res.Polled, res.Events)

	return nil
}

func openStore(rootOpts *RootOptions, path string) (*store.Store, error) {
	if path == "" {
		path = rootOpts.Config.Store.Path
	}

	st, err := store.Open(path, store.WithLogger(rootOpts.Logger))
	if err != nil {
		return nil, WrapExitError(ExitFailure, "open store "+path, err)
	}

	return st, nil
}
