package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/internal/options"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - devices, runs, run_data
const currentSchemaVersion = 1

var (
	// ErrRunNotFound is returned when no run has the requested uuid.
	ErrRunNotFound = errors.New("run not found")
	// ErrDeviceMismatch is returned when a run is ingested for a device other
	// than the one that owns it.
	ErrDeviceMismatch = errors.New("run belongs to another device")
	// ErrInvalidRunID is returned for a run id that is not a UUID.
	ErrInvalidRunID = errors.New("invalid run id")
	// ErrMissingDevice is returned when a run is ingested without a device uid.
	ErrMissingDevice = errors.New("missing device uid")
	// ErrTickRange is returned for a tick SQLite cannot store as a signed 64-bit integer.
	ErrTickRange = errors.New("tick out of storable range")
)

// Store is the SQLite sample store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option = options.Option[*Store]

// WithLogger sets the logger used to report ingests.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(s *Store) {
		s.logger = logger
	})
}

// Open creates or opens the database at path and applies the schema.
//
// The database runs in WAL mode with a single connection, so readers are not
// blocked by an ingest in another process.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db, logger: logging.Discard()}
	if err := options.Apply(s, opts...); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// withTx runs fn in a transaction, committing when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
