package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunInfo describes a stored run.
type RunInfo struct {
	UUID       string
	DeviceUID  string
	Meta       string // JSON text; empty when the meta value is opaque
	CreatedAt  string
	UpdatedAt  string
	EpochTimeS uint32
	TickBaseUs uint32
	// EventOffset is the byte offset in the event data region after the last
	// ingested record.
	EventOffset int
	Active      bool
}

// StreamSummary describes the stored samples of one stream.
type StreamSummary struct {
	Kind      StreamKind
	StreamID  string
	Count     int
	FirstTick uint64
	LastTick  uint64
}

// Row is one stored sample.
type Row struct {
	Kind     StreamKind
	StreamID string
	Data     string
	Tick     uint64
}

// Query selects stored samples of a run. Zero fields do not filter.
type Query struct {
	Kind     StreamKind
	StreamID string
	// StartTick and EndTick bound the tick range [StartTick, EndTick).
	StartTick uint64
	EndTick   uint64
}

const runColumns = `r.uuid, d.uid, COALESCE(r.meta, ''), r.created_at, r.updated_at,
	r.epoch_time_s, r.tick_base_us, r.event_offset, r.is_active`

func scanRun(row interface{ Scan(...any) error }) (RunInfo, error) {
	var info RunInfo
	err := row.Scan(&info.UUID, &info.DeviceUID, &info.Meta, &info.CreatedAt, &info.UpdatedAt,
		&info.EpochTimeS, &info.TickBaseUs, &info.EventOffset, &info.Active)

	return info, err
}

// Run returns the run with the given uuid.
func (s *Store) Run(ctx context.Context, runUUID string) (RunInfo, error) {
	runUUID = canonicalRunID(runUUID)
	info, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs r JOIN devices d ON d.id = r.device_id
		WHERE r.uuid = ?
	`, runUUID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("query run: %w", err)
	}

	return info, nil
}

// Runs returns every stored run in creation order. It returns an empty slice,
// not nil, when the store is empty.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs r JOIN devices d ON d.id = r.device_id
		ORDER BY r.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Streams summarizes the stored streams of a run, polled streams first.
func (s *Store) Streams(ctx context.Context, runUUID string) ([]StreamSummary, error) {
	runID, err := s.runID(ctx, runUUID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_type, stream_id, COUNT(*), MIN(tick), MAX(tick)
		FROM run_data
		WHERE run_id = ?
		GROUP BY stream_type, stream_id
		ORDER BY stream_type DESC, stream_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	streams := []StreamSummary{}
	for rows.Next() {
		var (
			st          StreamSummary
			kind        string
			first, last int64
		)
		if err := rows.Scan(&kind, &st.StreamID, &st.Count, &first, &last); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		st.Kind = StreamKind(kind)
		st.FirstTick = uint64(first) //nolint:gosec
		st.LastTick = uint64(last)   //nolint:gosec
		streams = append(streams, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}

	return streams, nil
}

// Data returns the stored samples of a run matching q, ordered by tick and
// then by insertion order.
func (s *Store) Data(ctx context.Context, runUUID string, q Query) ([]Row, error) {
	runID, err := s.runID(ctx, runUUID)
	if err != nil {
		return nil, err
	}

	var (
		where = []string{"run_id = ?"}
		args  = []any{runID}
	)
	if q.Kind != "" {
		where = append(where, "stream_type = ?")
		args = append(args, string(q.Kind))
	}
	if q.StreamID != "" {
		where = append(where, "stream_id = ?")
		args = append(args, q.StreamID)
	}
	if q.StartTick > 0 {
		tick, err := sqlTick(q.StartTick)
		if err != nil {
			return nil, err
		}
		where = append(where, "tick >= ?")
		args = append(args, tick)
	}
	if q.EndTick > 0 {
		tick, err := sqlTick(q.EndTick)
		if err != nil {
			return nil, err
		}
		where = append(where, "tick < ?")
		args = append(args, tick)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_type, stream_id, data, tick
		FROM run_data
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY tick ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query data: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			r    Row
			kind string
			tick int64
		)
		if err := rows.Scan(&kind, &r.StreamID, &r.Data, &tick); err != nil {
			return nil, fmt.Errorf("scan data: %w", err)
		}
		r.Kind = StreamKind(kind)
		r.Tick = uint64(tick) //nolint:gosec
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data: %w", err)
	}

	return out, nil
}

// SetActive updates the active flag of a run.
func (s *Store) SetActive(ctx context.Context, runUUID string, active bool) error {
	runUUID = canonicalRunID(runUUID)
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET is_active = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE uuid = ?
	`, active, runUUID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
	}

	return nil
}

// canonicalRunID lowercases and hyphenates ids that parse as UUIDs, so lookups
// match the form Ingest stores.
func canonicalRunID(runUUID string) string {
	if id, err := uuid.Parse(runUUID); err == nil {
		return id.String()
	}

	return runUUID
}

func (s *Store) runID(ctx context.Context, runUUID string) (int64, error) {
	runUUID = canonicalRunID(runUUID)

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE uuid = ?`, runUUID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
	}
	if err != nil {
		return 0, fmt.Errorf("query run: %w", err)
	}

	return id, nil
}
