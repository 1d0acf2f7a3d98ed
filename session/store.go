package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gloop-agent/gloop/agent"
)

// ErrVersionConflict is returned by Save when the caller's expected
// version does not match the version already stored for the run.
var ErrVersionConflict = errors.New("session: version conflict")

// ErrNotFound is returned by Load when no record exists for the run ID.
var ErrNotFound = fmt.Errorf("session: %w", agent.ErrRunNotFound)

// Status summarizes a session's lifecycle for the /sessions listing.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Record is a durable, queryable snapshot of one run's message history,
// distinct from the fixed-path reboot snapshot in reboot.go.
type Record struct {
	RunID     agent.RunID
	History   []agent.Message
	Status    Status
	Version   int
	UpdatedAt time.Time
}

// cloneRecord returns a deep copy safe to hand across goroutine boundaries.
func cloneRecord(in Record) Record {
	out := in
	out.History = agent.CloneMessages(in.History)
	return out
}

// Store persists Records in a SQLite database (pure-Go driver, no cgo),
// using optimistic concurrency on Record.Version.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path and ensures its schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		run_id TEXT PRIMARY KEY,
		messages TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("session: init schema: %w", err)
	}
	return nil
}

// Save upserts record with optimistic concurrency: creating a run requires
// Version == 0, updating one requires Version to match the stored value.
// On success the stored version is bumped by one.
func (s *Store) Save(ctx context.Context, record Record) error {
	record = cloneRecord(record)

	messages, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("session: marshal history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, `SELECT version FROM sessions WHERE run_id = ?`, record.RunID).Scan(&currentVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if record.Version != 0 {
			return fmt.Errorf("%w: run %q expected version 0 on create, got %d", ErrVersionConflict, record.RunID, record.Version)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sessions (run_id, messages, status, version, updated_at)
			VALUES (?, ?, ?, 1, ?)
		`, record.RunID, messages, record.Status, time.Now())
		if err != nil {
			return fmt.Errorf("session: insert: %w", err)
		}
	case err != nil:
		return fmt.Errorf("session: query current version: %w", err)
	default:
		if record.Version != currentVersion {
			return fmt.Errorf("%w: run %q expected version %d, got %d", ErrVersionConflict, record.RunID, currentVersion, record.Version)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE sessions SET messages = ?, status = ?, version = ?, updated_at = ?
			WHERE run_id = ?
		`, messages, record.Status, currentVersion+1, time.Now(), record.RunID)
		if err != nil {
			return fmt.Errorf("session: update: %w", err)
		}
	}

	return tx.Commit()
}

// Load returns the current record for runID.
func (s *Store) Load(ctx context.Context, runID agent.RunID) (Record, error) {
	var (
		record   Record
		messages string
		status   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT messages, status, version, updated_at FROM sessions WHERE run_id = ?
	`, runID).Scan(&messages, &status, &record.Version, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("session: load: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &record.History); err != nil {
		return Record{}, fmt.Errorf("session: decode history: %w", err)
	}
	record.RunID = runID
	record.Status = Status(status)
	return record, nil
}

// Summary is the row shape /sessions lists: enough to recognize a past
// session without loading its full history.
type Summary struct {
	RunID     agent.RunID
	Status    Status
	UpdatedAt time.Time
}

// List returns every stored session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, status, updated_at FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			runID  string
			status string
			when   time.Time
		)
		if err := rows.Scan(&runID, &status, &when); err != nil {
			return nil, fmt.Errorf("session: scan list row: %w", err)
		}
		summaries = append(summaries, Summary{RunID: agent.RunID(runID), Status: Status(status), UpdatedAt: when})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: list rows: %w", err)
	}
	return summaries, nil
}
