package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/internal/tail"
	"github.com/arloliu/dlf/source"
)

// NewFollowCommand creates the follow command.
func NewFollowCommand(rootOpts *RootOptions) *cobra.Command {
	var streams []string

	cmd := &cobra.Command{
		Use:   "follow [run]",
		Short: "Print samples as the logger writes them",
		Long: `Follow a run that is still being written and print new samples as they
are appended.

Run directories are watched for file changes. Runs behind a URL are polled at
follow.interval. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, rootOpts, streams, args)
		},
	}

	cmd.Flags().StringSliceVarP(&streams, "streams", "s", nil, "stream ids to follow (default all)")

	return cmd
}

func runFollow(cmd *cobra.Command, opts *RootOptions, streams []string, args []string) error {
	ctx := cmd.Context()

	src, name, err := opts.openSource(args)
	if err != nil {
		return err
	}

	// The meta stream fixes the tick to time mapping for the whole run.
	run, err := dlf.OpenRun(ctx, src)
	if err != nil {
		return WrapExitError(ExitFailure, "open run "+name, err)
	}

	tailer, err := tail.New(src, tail.WithStreams(streams...), tail.WithLogger(opts.Logger))
	if err != nil {
		return WrapExitError(ExitUsage, "follow", err)
	}

	w := newSampleWriter(cmd.OutOrStdout(), opts.Format)
	handle := func(b tail.Batch) error {
		for _, s := range b.Polled {
			if err := w.Write(record{Time: run.Time(s.Tick), Kind: kindPolled, Sample: s}); err != nil {
				return err
			}
		}
		for _, s := range b.Events {
			if err := w.Write(record{Time: run.Time(s.Tick), Kind: kindEvent, Sample: s}); err != nil {
				return err
			}
		}

		return w.Flush()
	}

	opts.Logger.InfoContext(ctx, "following run", logging.KeyRun, name)

	follow := opts.Config.Follow
	if dir, ok := src.(*source.DirSource); ok {
		err = tailer.Watch(ctx, dir.Dir(), follow.Debounce, follow.Interval, handle)
	} else {
		err = tailer.Every(ctx, follow.Interval, handle)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cur, off := tailer.Position()
		opts.Logger.InfoContext(ctx, "stopped following", logging.KeyRun, name, logging.KeyTick, cur.Tick, logging.KeyBytes, off)

		return nil
	}
	if err != nil {
		return WrapExitError(ExitFailure, "follow "+name, err)
	}

	return nil
}
