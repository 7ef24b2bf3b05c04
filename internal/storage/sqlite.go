package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/corpus-chunker/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance. The parent
// directory of dbPath is created if needed; ":memory:" opens a private
// in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Run operations

const runColumns = `id, language, text_dir, parallelism, workers, files, chunks, bytes_read, duration_ms, created_at`

// createRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createRunWithQuerier(ctx context.Context, q querier, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		run.ID, run.Language, run.TextDir, run.Parallelism, run.Workers,
		run.Files, run.Chunks, run.BytesRead, run.Duration.Milliseconds(), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	return s.createRunWithQuerier(ctx, s.querier(), run)
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var durationMS int64
	err := row.Scan(&run.ID, &run.Language, &run.TextDir, &run.Parallelism, &run.Workers,
		&run.Files, &run.Chunks, &run.BytesRead, &durationMS, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// getRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getRunWithQuerier(ctx context.Context, q querier, runID string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	run, err := scanRun(q.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStorage) GetRun(ctx context.Context, runID string) (*Run, error) {
	return s.getRunWithQuerier(ctx, s.querier(), runID)
}

// listRunsWithQuerier returns the newest runs first, optionally for one language
func (s *SQLiteStorage) listRunsWithQuerier(ctx context.Context, q querier, language string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []interface{}{}
	if language != "" {
		query += ` WHERE language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) ListRuns(ctx context.Context, language string, limit int) ([]*Run, error) {
	return s.listRunsWithQuerier(ctx, s.querier(), language, limit)
}

// deleteRunWithQuerier removes a run; plan entries and units cascade
func (s *SQLiteStorage) deleteRunWithQuerier(ctx context.Context, q querier, runID string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteRun(ctx context.Context, runID string) error {
	return s.deleteRunWithQuerier(ctx, s.querier(), runID)
}

// Plan operations

// insertPlanEntriesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertPlanEntriesWithQuerier(ctx context.Context, q querier, runID string, plan types.Plan) error {
	query := `
		INSERT INTO plan_entries (run_id, position, path, byte_size, chunk_count)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, entry := range plan {
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, query, runID, i, entry.Path, entry.ByteSize, entry.ChunkCount); err != nil {
			return fmt.Errorf("failed to insert plan entry %s: %w", entry.Path, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) InsertPlanEntries(ctx context.Context, runID string, plan types.Plan) error {
	return s.insertPlanEntriesWithQuerier(ctx, s.querier(), runID, plan)
}

// listPlanEntriesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listPlanEntriesWithQuerier(ctx context.Context, q querier, runID string) (types.Plan, error) {
	query := `
		SELECT path, byte_size, chunk_count
		FROM plan_entries
		WHERE run_id = ?
		ORDER BY position
	`
	rows, err := q.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan entries: %w", err)
	}
	defer rows.Close()

	plan := make(types.Plan, 0)
	for rows.Next() {
		var entry types.PlanEntry
		if err := rows.Scan(&entry.Path, &entry.ByteSize, &entry.ChunkCount); err != nil {
			return nil, err
		}
		plan = append(plan, entry)
	}
	return plan, rows.Err()
}

func (s *SQLiteStorage) ListPlanEntries(ctx context.Context, runID string) (types.Plan, error) {
	return s.listPlanEntriesWithQuerier(ctx, s.querier(), runID)
}

// Unit operations

// insertUnitsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertUnitsWithQuerier(ctx context.Context, q querier, runID string, units []Unit) error {
	query := `
		INSERT INTO text_units (run_id, position, entry_position, content, content_hash)
		VALUES (?, ?, ?, ?, ?)
	`
	for i := range units {
		u := &units[i]
		u.RunID = runID
		result, err := q.ExecContext(ctx, query, runID, u.Position, u.EntryPosition, u.Content, u.ContentHash[:])
		if err != nil {
			return fmt.Errorf("failed to insert unit %d: %w", u.Position, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}

func (s *SQLiteStorage) InsertUnits(ctx context.Context, runID string, units []Unit) error {
	return s.insertUnitsWithQuerier(ctx, s.querier(), runID, units)
}

// listUnitsWithQuerier pages through a run's units in output order.
// A non-positive limit returns every unit from offset on.
func (s *SQLiteStorage) listUnitsWithQuerier(ctx context.Context, q querier, runID string, offset, limit int) ([]*Unit, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT id, run_id, position, entry_position, content, content_hash
		FROM text_units
		WHERE run_id = ?
		ORDER BY position
		LIMIT ? OFFSET ?
	`
	rows, err := q.QueryContext(ctx, query, runID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := make([]*Unit, 0)
	for rows.Next() {
		var u Unit
		var hash []byte
		if err := rows.Scan(&u.ID, &u.RunID, &u.Position, &u.EntryPosition, &u.Content, &hash); err != nil {
			return nil, err
		}
		copy(u.ContentHash[:], hash)
		units = append(units, &u)
	}
	return units, rows.Err()
}

func (s *SQLiteStorage) ListUnits(ctx context.Context, runID string, offset, limit int) ([]*Unit, error) {
	return s.listUnitsWithQuerier(ctx, s.querier(), runID, offset, limit)
}

// Status operations

// getStatusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{}

	err := q.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(bytes_read), 0) FROM runs`).
		Scan(&status.RunsCount, &status.BytesRead)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM text_units`).Scan(&status.UnitsCount); err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	runs, err := s.listRunsWithQuerier(ctx, q, "", 1)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		status.LastRun = runs[0]
	}

	version, err := schemaVersion(ctx, q)
	if err != nil {
		return nil, err
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		SchemaVersion:      version.String(),
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations - every call goes through the transaction,
// since the pool holds a single connection.

func (t *sqliteTx) CreateRun(ctx context.Context, run *Run) error {
	return t.storage.createRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) GetRun(ctx context.Context, runID string) (*Run, error) {
	return t.storage.getRunWithQuerier(ctx, t.querier(), runID)
}

func (t *sqliteTx) ListRuns(ctx context.Context, language string, limit int) ([]*Run, error) {
	return t.storage.listRunsWithQuerier(ctx, t.querier(), language, limit)
}

func (t *sqliteTx) DeleteRun(ctx context.Context, runID string) error {
	return t.storage.deleteRunWithQuerier(ctx, t.querier(), runID)
}

func (t *sqliteTx) InsertPlanEntries(ctx context.Context, runID string, plan types.Plan) error {
	return t.storage.insertPlanEntriesWithQuerier(ctx, t.querier(), runID, plan)
}

func (t *sqliteTx) ListPlanEntries(ctx context.Context, runID string) (types.Plan, error) {
	return t.storage.listPlanEntriesWithQuerier(ctx, t.querier(), runID)
}

func (t *sqliteTx) InsertUnits(ctx context.Context, runID string, units []Unit) error {
	return t.storage.insertUnitsWithQuerier(ctx, t.querier(), runID, units)
}

func (t *sqliteTx) ListUnits(ctx context.Context, runID string, offset, limit int) ([]*Unit, error) {
	return t.storage.listUnitsWithQuerier(ctx, t.querier(), runID, offset, limit)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
