package cli

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/section"
)

// DecodeOptions holds the flags of the decode command.
type DecodeOptions struct {
	Streams    []string
	Start      uint64
	End        uint64
	Downsample uint64
	PolledOnly bool
	EventsOnly bool
	Live       bool
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode [run]",
		Short: "Decode the samples of a run",
		Long: `Decode the polled and event samples of a run, merged in tick order.

At equal ticks polled samples are printed before events. A logfile that ends
mid-sample is decoded up to its last complete sample.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.PolledOnly && opts.EventsOnly {
				return NewExitError(ExitUsage, "--polled and --events are mutually exclusive")
			}
			if opts.Downsample == 0 {
				return NewExitError(ExitUsage, "--downsample must be positive")
			}

			return runDecode(cmd, rootOpts, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.Streams, "streams", "s", nil, "stream ids to decode (default all)")
	flags.Uint64Var(&opts.Start, "start", 0, "first tick")
	flags.Uint64Var(&opts.End, "end", 0, "exclusive end tick (default the logfile's tick span)")
	flags.Uint64Var(&opts.Downsample, "downsample", 1, "keep polled samples every n ticks from --start")
	flags.BoolVar(&opts.PolledOnly, "polled", false, "decode polled samples only")
	flags.BoolVar(&opts.EventsOnly, "events", false, "decode events only")
	flags.BoolVar(&opts.Live, "live", false, "decode past the tick span of a run still being written")

	return cmd
}

func runDecode(cmd *cobra.Command, rootOpts *RootOptions, opts *DecodeOptions, args []string) error {
	ctx := cmd.Context()

	src, name, err := rootOpts.openSource(args)
	if err != nil {
		return err
	}

	run, err := dlf.OpenRun(ctx, src)
	if err != nil {
		return WrapExitError(ExitFailure, "open run "+name, err)
	}

	for _, id := range opts.Streams {
		if !declares(run.PolledHeader(), id) && !declares(run.EventHeader(), id) {
			return NewExitError(ExitUsage, fmt.Sprintf("unknown stream %q", id))
		}
	}

	common := []decoder.Option{decoder.WithStartTick(opts.Start)}
	if cmd.Flags().Changed("end") {
		common = append(common, decoder.WithEndTick(opts.End))
	}

	var records []record

	if h := run.PolledHeader(); h != nil && !opts.EventsOnly {
		if ids, ok := declared(h, opts.Streams); ok {
			polledOpts := append(slices.Clone(common), decoder.WithStreams(ids...), decoder.WithDownsample(opts.Downsample))
			if opts.Live {
				polledOpts = append(polledOpts, decoder.WithUnboundedTickSpan())
			}

			res, err := run.Polled(polledOpts...)
			if err != nil {
				return WrapExitError(ExitFailure, "decode polled", err)
			}
			if res.Truncated {
				rootOpts.Logger.InfoContext(ctx, "polled logfile ends mid-range",
					logging.KeyTick, res.Next.Tick, logging.KeyBytes, res.Consumed)
			}
			records = appendRecords(records, run, kindPolled, res.Samples)
		}
	}

	if h := run.EventHeader(); h != nil && !opts.PolledOnly {
		if ids, ok := declared(h, opts.Streams); ok {
			res, err := run.Events(append(slices.Clone(common), decoder.WithStreams(ids...))...)
			if err != nil {
				return WrapExitError(ExitFailure, "decode events", err)
			}
			if res.Truncated {
				rootOpts.Logger.InfoContext(ctx, "event logfile ends with a partial record", logging.KeyBytes, res.Consumed)
			}
			records = appendRecords(records, run, kindEvent, res.Samples)
		}
	}

	// Polled records precede events in the slice, so a stable sort keeps
	// them first at equal ticks.
	slices.SortStableFunc(records, func(a, b record) int {
		return cmp.Compare(a.Tick, b.Tick)
	})

	rootOpts.Logger.DebugContext(ctx, "decoded run", logging.KeyRun, name, logging.KeySamples, len(records))

	w := newSampleWriter(cmd.OutOrStdout(), rootOpts.Format)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return WrapExitError(ExitFailure, "write output", err)
		}
	}

	return w.Flush()
}

func appendRecords(records []record, run *dlf.Run, kind string, samples []decoder.Sample) []record {
	for _, s := range samples {
		records = append(records, record{Time: run.Time(s.Tick), Kind: kind, Sample: s})
	}

	return records
}

func declares(h *section.LogfileHeader, id string) bool {
	if h == nil {
		return false
	}
	_, ok := h.StreamIndex(id)

	return ok
}

// declared returns the ids of filter that h declares. It reports false when
// a filter is given and h declares none of its ids.
func declared(h *section.LogfileHeader, filter []string) ([]string, bool) {
	if len(filter) == 0 {
		return nil, true
	}

	var ids []string
	for _, id := range filter {
		if _, ok := h.StreamIndex(id); ok {
			ids = append(ids, id)
		}
	}

	return ids, len(ids) > 0
}
