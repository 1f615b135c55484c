// Package store persists decoded runs in SQLite.
//
// The schema mirrors the upload service the logger fleet reports to:
//
//	devices   one row per logger, keyed by its uid
//	runs      one row per run uuid, owned by one device
//	run_data  one row per decoded sample (stream type, stream id, tick, JSON value)
//
// Ingestion is incremental. A run may be ingested repeatedly while its logger is
// still writing: polled samples are only inserted past the last tick already
// stored for their stream, and event records are read from the byte offset at
// which the previous ingest stopped.
package store
