package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/section"
)

// InspectResult describes the headers of a run.
type InspectResult struct {
	Meta   MetaInfo     `json:"meta"`
	Polled *LogfileInfo `json:"polled,omitempty"`
	Events *LogfileInfo `json:"events,omitempty"`
}

// MetaInfo describes the meta stream.
type MetaInfo struct {
	Epoch      time.Time `json:"epoch"`
	EpochTimeS uint32    `json:"epoch_time_s"`
	TickBaseUs uint32    `json:"tick_base_us"`
	Structure  string    `json:"structure"`
	Value      any       `json:"value,omitempty"`
	Size       uint32    `json:"size"`
}

// LogfileInfo describes a polled or event logfile header.
type LogfileInfo struct {
	Streams      []StreamInfo `json:"streams"`
	DuplicateIDs []string     `json:"duplicate_ids,omitempty"`
	TickSpan     uint64       `json:"tick_span"`
	DataBytes    int          `json:"data_bytes"`
}

// StreamInfo describes one declared stream.
type StreamInfo struct {
	ID        string `json:"id"`
	Structure string `json:"structure"`
	Notes     string `json:"notes"`
	TypeSize  uint32 `json:"type_size"`
	Interval  uint64 `json:"interval,omitempty"`
	Phase     uint64 `json:"phase,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [run]",
		Short: "Show the headers of a run",
		Long: `Show the meta stream and the stream declarations of the polled and event
logfiles of a run, without decoding any samples.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args)
		},
	}
}

func runInspect(cmd *cobra.Command, opts *RootOptions, args []string) error {
	src, name, err := opts.openSource(args)
	if err != nil {
		return err
	}

	run, err := dlf.OpenRun(cmd.Context(), src)
	if err != nil {
		return WrapExitError(ExitFailure, "open run "+name, err)
	}

	res, err := inspect(run)
	if err != nil {
		return WrapExitError(ExitFailure, "inspect run "+name, err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}

	return res.writeText(cmd.OutOrStdout(), run.Meta.TickDuration())
}

func inspect(run *dlf.Run) (InspectResult, error) {
	meta := run.Meta
	res := InspectResult{
		Meta: MetaInfo{
			Epoch:      meta.Epoch(),
			EpochTimeS: meta.EpochTimeS,
			TickBaseUs: meta.TickBaseUs,
			Structure:  meta.MetaStructure,
			Size:       meta.MetaSize,
		},
		Polled: logfileInfo(run.PolledHeader()),
		Events: logfileInfo(run.EventHeader()),
	}

	value, ok, err := meta.Value()
	if err != nil {
		return res, fmt.Errorf("meta value: %w", err)
	}
	if ok {
		res.Meta.Value = value
	}

	return res, nil
}

func logfileInfo(h *section.LogfileHeader) *LogfileInfo {
	if h == nil {
		return nil
	}

	info := &LogfileInfo{
		Streams:      make([]StreamInfo, len(h.Streams)),
		DuplicateIDs: h.DuplicateIDs(),
		TickSpan:     h.TickSpan,
		DataBytes:    len(h.Data),
	}
	for i, s := range h.Streams {
		info.Streams[i] = StreamInfo{
			ID:        s.ID,
			Structure: s.TypeStructure,
			Notes:     s.Notes,
			TypeSize:  s.TypeSize,
		}
		if h.StreamType == format.StreamPolled {
			info.Streams[i].Interval = s.Schedule.Interval
			info.Streams[i].Phase = s.Schedule.Phase
		}
	}

	return info
}

func (r InspectResult) writeText(w io.Writer, tick time.Duration) error {
	value := "(opaque)"
	if r.Meta.Value != nil {
		v, err := formatValue(r.Meta.Value)
		if err != nil {
			return err
		}
		value = v
	}

	fmt.Fprintln(w, "Meta")
	fmt.Fprintf(w, "  epoch:      %s (%d)\n", r.Meta.Epoch.Format(time.RFC3339), r.Meta.EpochTimeS)
	fmt.Fprintf(w, "  tick:       %s\n", tick)
	fmt.Fprintf(w, "  structure:  %s\n", r.Meta.Structure)
	fmt.Fprintf(w, "  value:      %s\n", value)

	writeLogfile(w, "Polled", r.Polled, tick, true)
	writeLogfile(w, "Events", r.Events, tick, false)

	return nil
}

func writeLogfile(w io.Writer, title string, info *LogfileInfo, tick time.Duration, polled bool) {
	fmt.Fprintln(w)
	if info == nil {
		fmt.Fprintf(w, "%s\n  (no logfile)\n", title)
		return
	}

	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "  tick span:  %d (%s)\n", info.TickSpan, time.Duration(info.TickSpan)*tick) //nolint:gosec
	fmt.Fprintf(w, "  data:       %d bytes\n", info.DataBytes)
	fmt.Fprintf(w, "  streams:    %d\n", len(info.Streams))
	for _, id := range info.DuplicateIDs {
		fmt.Fprintf(w, "  duplicate:  %s\n", id)
	}
	if len(info.Streams) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if polled {
		fmt.Fprintln(tw, "  IDX\tID\tSTRUCTURE\tSIZE\tINTERVAL\tPHASE\tNOTES")
	} else {
		fmt.Fprintln(tw, "  IDX\tID\tSTRUCTURE\tSIZE\tNOTES")
	}
	for i, s := range info.Streams {
		if polled {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%d\t%d\t%s\n", i, s.ID, s.Structure, s.TypeSize, s.Interval, s.Phase, s.Notes)
		} else {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%s\n", i, s.ID, s.Structure, s.TypeSize, s.Notes)
		}
	}
	tw.Flush()
}
