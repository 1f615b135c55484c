package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/arloliu/dlf"
	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/internal/logging"
)

// StreamKind is the run_data.stream_type of a sample.
type StreamKind string

const (
	KindPolled StreamKind = "POLLED"
	KindEvent  StreamKind = "EVENT"
)

// IngestRequest names the run being ingested.
type IngestRequest struct {
	// RunID is the run's UUID.
	RunID     string
	DeviceUID string
	// Active marks a run whose logger is still writing.
	Active bool
}

// IngestStats reports what one Ingest call stored.
type IngestStats struct {
	Created bool
	Polled  int
	Events  int
	// Duplicates counts polled samples not stored because an earlier stream
	// with the same id already holds their tick.
	Duplicates int
	// Truncated reports that the polled data ended mid-range.
	Truncated bool
}

// Ingest stores the samples of run that are not stored yet.
//
// The first ingest of a run id creates the run for the device. Later ingests
// of the same id must come from the same device and only append: polled
// samples after the last stored tick of their stream, and event records after
// the last consumed record.
func (s *Store) Ingest(ctx context.Context, req IngestRequest, run *dlf.Run) (IngestStats, error) {
	var stats IngestStats

	id, err := uuid.Parse(req.RunID)
	if err != nil {
		return stats, fmt.Errorf("%w: %q: %w", ErrInvalidRunID, req.RunID, err)
	}
	if req.DeviceUID == "" {
		return stats, ErrMissingDevice
	}
	runUUID := id.String()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		deviceID, err := upsertDevice(ctx, tx, req.DeviceUID)
		if err != nil {
			return err
		}

		runID, eventOffset, created, err := upsertRun(ctx, tx, runUUID, deviceID, run)
		if err != nil {
			return err
		}
		stats.Created = created

		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO run_data (run_id, stream_type, stream_id, tick, data)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer insert.Close()

		put := func(kind StreamKind, sample decoder.Sample) (bool, error) {
			tick, err := sqlTick(sample.Tick)
			if err != nil {
				return false, err
			}
			data, err := encodeValue(sample.Value)
			if err != nil {
				return false, fmt.Errorf("%s at tick %d: %w", sample.StreamID, sample.Tick, err)
			}
			res, err := insert.ExecContext(ctx, runID, string(kind), sample.StreamID, tick, data)
			if err != nil {
				return false, fmt.Errorf("insert %s sample: %w", kind, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return false, fmt.Errorf("insert %s sample: %w", kind, err)
			}

			return n > 0, nil
		}

		polled, err := ingestPolled(ctx, tx, runID, run, req.Active, put)
		if err != nil {
			return err
		}
		stats.Polled = polled.stored
		stats.Duplicates = polled.duplicates
		stats.Truncated = polled.truncated

		consumed, n, err := ingestEvents(run, eventOffset, put)
		if err != nil {
			return err
		}
		stats.Events = n

		_, err = tx.ExecContext(ctx, `
			UPDATE runs
			SET is_active = ?, event_offset = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			WHERE id = ?
		`, req.Active, consumed, runID)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}

		return nil
	})
	if err != nil {
		return IngestStats{}, fmt.Errorf("ingest run %s: %w", runUUID, err)
	}

	if stats.Duplicates > 0 {
		s.logger.WarnContext(ctx, "skipped polled samples of duplicate stream ids",
			logging.KeyRun, runUUID,
			logging.KeySamples, stats.Duplicates,
		)
	}

	s.logger.InfoContext(ctx, "ingested run",
		logging.KeyRun, runUUID,
		"created", stats.Created,
		"polled", stats.Polled,
		"events", stats.Events,
	)

	return stats, nil
}

func upsertDevice(ctx context.Context, tx *sql.Tx, uid string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT INTO devices (uid) VALUES (?) ON CONFLICT(uid) DO NOTHING`, uid); err != nil {
		return 0, fmt.Errorf("insert device: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM devices WHERE uid = ?`, uid).Scan(&id); err != nil {
		return 0, fmt.Errorf("select device: %w", err)
	}

	return id, nil
}

// upsertRun returns the row id and event offset of the run, creating it when needed.
func upsertRun(ctx context.Context, tx *sql.Tx, runUUID string, deviceID int64, run *dlf.Run) (id int64, eventOffset int, created bool, err error) {
	var owner int64
	err = tx.QueryRowContext(ctx, `SELECT id, device_id, event_offset FROM runs WHERE uuid = ?`, runUUID).
		Scan(&id, &owner, &eventOffset)
	switch {
	case err == nil:
		if owner != deviceID {
			return 0, 0, false, ErrDeviceMismatch
		}

		return id, eventOffset, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, 0, false, fmt.Errorf("select run: %w", err)
	}

	var meta sql.NullString
	value, ok, err := run.Meta.Value()
	if err != nil {
		return 0, 0, false, fmt.Errorf("meta value: %w", err)
	}
	if ok {
		if meta.String, err = encodeValue(value); err != nil {
			return 0, 0, false, err
		}
		meta.Valid = true
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (uuid, device_id, epoch_time_s, tick_base_us, meta)
		VALUES (?, ?, ?, ?, ?)
	`, runUUID, deviceID, run.Meta.EpochTimeS, run.Meta.TickBaseUs, meta)
	if err != nil {
		return 0, 0, false, fmt.Errorf("insert run: %w", err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, 0, false, fmt.Errorf("insert run: %w", err)
	}

	return id, 0, true, nil
}

type putFunc func(StreamKind, decoder.Sample) (stored bool, err error)

type polledStats struct {
	stored     int
	duplicates int
	truncated  bool
}

func ingestPolled(ctx context.Context, tx *sql.Tx, runID int64, run *dlf.Run, active bool, put putFunc) (polledStats, error) {
	var stats polledStats

	header := run.PolledHeader()
	if header == nil {
		return stats, nil
	}

	last, err := lastPolledTicks(ctx, tx, runID)
	if err != nil {
		return stats, err
	}

	// Every stream has to be past its own last tick, so decoding can start at
	// the smallest of them.
	var start uint64 = math.MaxUint64
	for i := range header.Streams {
		st := &header.Streams[i]
		if st.IsOpaque() {
			continue
		}
		tick, ok := last[st.ID]
		if !ok {
			start = 0
			break
		}
		start = min(start, tick+1)
	}
	if start == math.MaxUint64 {
		return stats, nil
	}

	opts := []decoder.Option{decoder.WithStartTick(start)}
	if active {
		opts = append(opts, decoder.WithUnboundedTickSpan())
	}

	res, err := run.Polled(opts...)
	if err != nil {
		return stats, fmt.Errorf("decode polled: %w", err)
	}
	stats.truncated = res.Truncated

	for _, sample := range res.Samples {
		if tick, ok := last[sample.StreamID]; ok && sample.Tick <= tick {
			continue
		}
		stored, err := put(KindPolled, sample)
		if err != nil {
			return stats, err
		}
		if stored {
			stats.stored++
		} else {
			stats.duplicates++
		}
	}

	return stats, nil
}

func lastPolledTicks(ctx context.Context, tx *sql.Tx, runID int64) (map[string]uint64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT stream_id, MAX(tick)
		FROM run_data
		WHERE run_id = ? AND stream_type = ?
		GROUP BY stream_id
	`, runID, string(KindPolled))
	if err != nil {
		return nil, fmt.Errorf("query last ticks: %w", err)
	}
	defer rows.Close()

	last := make(map[string]uint64)
	for rows.Next() {
		var (
			id   string
			tick int64
		)
		if err := rows.Scan(&id, &tick); err != nil {
			return nil, fmt.Errorf("scan last tick: %w", err)
		}
		last[id] = uint64(tick) //nolint:gosec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate last ticks: %w", err)
	}

	return last, nil
}

// ingestEvents stores the records after offset and returns the new offset.
func ingestEvents(run *dlf.Run, offset int, put putFunc) (int, int, error) {
	if run.EventHeader() == nil {
		return offset, 0, nil
	}

	res, err := run.Events(decoder.WithByteOffset(offset))
	if err != nil {
		return 0, 0, fmt.Errorf("decode events: %w", err)
	}

	for i, sample := range res.Samples {
		if _, err := put(KindEvent, sample); err != nil {
			return 0, i, err
		}
	}

	return res.Consumed, len(res.Samples), nil
}
