// Package tail follows a run while the logger is still writing it.
//
// A Tailer remembers how far it has read: the polled cursor and the event byte
// offset. Each Poll re-reads the run from its source and returns only the
// samples appended since the previous Poll.
package tail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/internal/options"
	"github.com/arloliu/dlf/section"
	"github.com/arloliu/dlf/source"
)

// Batch holds the samples appended since the previous Poll.
type Batch struct {
	Polled []decoder.Sample
	Events []decoder.Sample
	// Cursor is the polled position after this batch.
	Cursor decoder.Cursor
	// EventOffset is the event data offset after this batch.
	EventOffset int
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return len(b.Polled) + len(b.Events)
}

// Tailer incrementally decodes a growing run. It is not safe for concurrent use.
type Tailer struct {
	src         source.Source
	logger      *slog.Logger
	streams     []string
	cursor      decoder.Cursor
	eventOffset int
}

// Option configures a Tailer.
type Option = options.Option[*Tailer]

// WithLogger sets the logger used to report polls.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(t *Tailer) {
		t.logger = logger
	})
}

// WithStreams restricts the followed streams. Ids may name polled or event
// streams; ids a logfile does not declare are ignored for that logfile.
func WithStreams(ids ...string) Option {
	return options.NoError(func(t *Tailer) {
		t.streams = append(t.streams[:0:0], ids...)
	})
}

// WithCursor starts following from a polled cursor and event offset, e.g.
// the position of an earlier session.
func WithCursor(cur decoder.Cursor, eventOffset int) Option {
	return options.New(func(t *Tailer) error {
		if cur.Done < 0 || eventOffset < 0 {
			return fmt.Errorf("invalid start position %+v, %d", cur, eventOffset)
		}
		t.cursor = cur
		t.eventOffset = eventOffset

		return nil
	})
}

// New creates a Tailer reading src from the start of the run.
func New(src source.Source, opts ...Option) (*Tailer, error) {
	t := &Tailer{src: src, logger: logging.Discard()}
	if err := options.Apply(t, opts...); err != nil {
		return nil, err
	}

	return t, nil
}

// Poll reads the run and returns the samples appended since the last Poll.
// A logfile that is missing or whose header is not fully written yet
// contributes no samples. A failed Poll leaves the position unchanged.
func (t *Tailer) Poll(ctx context.Context) (Batch, error) {
	run, err := t.openRun(ctx)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{Cursor: t.cursor, EventOffset: t.eventOffset}

	if h := run.PolledHeader(); h != nil {
		if ids, ok := t.filter(h); ok {
			res, err := run.Polled(
				decoder.WithCursor(t.cursor),
				decoder.WithUnboundedTickSpan(),
				decoder.WithStreams(ids...),
			)
			if err != nil {
				return Batch{}, fmt.Errorf("polled: %w", err)
			}
			batch.Polled = res.Samples
			batch.Cursor = res.Next
		}
	}

	if h := run.EventHeader(); h != nil {
		if ids, ok := t.filter(h); ok {
			res, err := run.Events(decoder.WithByteOffset(t.eventOffset), decoder.WithStreams(ids...))
			if err != nil {
				return Batch{}, fmt.Errorf("events: %w", err)
			}
			batch.Events = res.Samples
			batch.EventOffset = res.Consumed
		}
	}

	t.cursor = batch.Cursor
	t.eventOffset = batch.EventOffset

	t.logger.DebugContext(ctx, "polled run",
		logging.KeySamples, batch.Len(),
		logging.KeyTick, batch.Cursor.Tick,
		logging.KeyBytes, batch.EventOffset,
	)

	return batch, nil
}

func (t *Tailer) openRun(ctx context.Context) (*dlf.Run, error) {
	meta, err := source.Fetch(ctx, t.src, source.StreamMeta)
	if err != nil {
		return nil, fmt.Errorf("meta: %w", err)
	}

	polled, err := t.logfile(ctx, source.StreamPolled, format.StreamPolled)
	if err != nil {
		return nil, err
	}

	events, err := t.logfile(ctx, source.StreamEvents, format.StreamEvent)
	if err != nil {
		return nil, err
	}

	return dlf.NewRun(meta, polled, events)
}

// logfile fetches one logfile. It returns nil while the file is absent or the
// logger has not finished writing its header.
func (t *Tailer) logfile(ctx context.Context, stream source.Stream, kind format.StreamType) ([]byte, error) {
	data, err := source.Fetch(ctx, t.src, stream)
	if errors.Is(err, errs.ErrStreamNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stream, err)
	}

	if _, err := section.ParseLogfileHeader(data, kind); errors.Is(err, errs.ErrTruncatedHeader) {
		t.logger.DebugContext(ctx, "logfile header incomplete",
			logging.KeyStream, stream.String(),
			logging.KeyBytes, len(data),
		)

		return nil, nil
	}

	return data, nil
}

// filter returns the configured ids declared by h, and false when a filter is
// set but none of its ids belongs to h.
func (t *Tailer) filter(h *section.LogfileHeader) ([]string, bool) {
	if len(t.streams) == 0 {
		return nil, true
	}

	var ids []string
	for _, id := range t.streams {
		if _, ok := h.StreamIndex(id); ok {
			ids = append(ids, id)
		}
	}

	return ids, len(ids) > 0
}

// Position returns the polled cursor and event offset reached so far.
func (t *Tailer) Position() (decoder.Cursor, int) {
	return t.cursor, t.eventOffset
}

// Handler receives every non-empty batch. Returning an error stops following.
type Handler func(Batch) error

func (t *Tailer) deliver(ctx context.Context, fn Handler) error {
	batch, err := t.Poll(ctx)
	if err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}

	return fn(batch)
}

// Every polls at a fixed interval until ctx is done. It suits sources without
// change notification, such as an HTTPSource.
func (t *Tailer) Every(ctx context.Context, interval time.Duration, fn Handler) error {
	if err := t.deliver(ctx, fn); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.deliver(ctx, fn); err != nil {
				return err
			}
		}
	}
}

// Watch polls whenever a run file in dir changes, until ctx is done.
// Notifications arriving within debounce of each other trigger a single poll.
// When fallback is positive the run is also polled at that interval, for
// filesystems that do not deliver notifications.
func (t *Tailer) Watch(ctx context.Context, dir string, debounce, fallback time.Duration, fn Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	if err := t.deliver(ctx, fn); err != nil {
		return err
	}

	var (
		pending   <-chan time.Time
		fallbackC <-chan time.Time
	)
	if fallback > 0 {
		ticker := time.NewTicker(fallback)
		defer ticker.Stop()
		fallbackC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRunFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			t.logger.DebugContext(ctx, "run file changed", logging.KeyPath, ev.Name, "op", ev.Op.String())
			pending = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		case <-pending:
			pending = nil
			if err := t.deliver(ctx, fn); err != nil {
				return err
			}
		case <-fallbackC:
			if err := t.deliver(ctx, fn); err != nil {
				return err
			}
		}
	}
}

// isRunFile reports whether name is one of the stream files of a run, in any
// of the compressed forms DirSource reads.
func isRunFile(name string) bool {
	base := filepath.Base(name)
	for _, f := range []string{source.MetaFile, source.PolledFile, source.EventFile} {
		if strings.HasPrefix(base, f) {
			return true
		}
	}

	return false
}
