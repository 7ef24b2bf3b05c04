package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/dshills/corpus-chunker/pkg/types"
)

// Storage defines the interface for persisting chunk runs
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, language string, limit int) ([]*Run, error)
	DeleteRun(ctx context.Context, runID string) error

	// Plan operations
	InsertPlanEntries(ctx context.Context, runID string, plan types.Plan) error
	ListPlanEntries(ctx context.Context, runID string) (types.Plan, error)

	// Unit operations
	InsertUnits(ctx context.Context, runID string, units []Unit) error
	ListUnits(ctx context.Context, runID string, offset, limit int) ([]*Unit, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Run records one completed chunk run
type Run struct {
	ID          string // UUID, assigned by CreateRun when empty
	Language    string
	TextDir     string
	Parallelism int
	Workers     int
	Files       int
	Chunks      int
	BytesRead   int64
	Duration    time.Duration
	CreatedAt   time.Time
}

// Unit is one stored text unit
type Unit struct {
	ID            int64
	RunID         string
	Position      int // Index in the run's flattened output
	EntryPosition int // Index of the plan entry (file) it came from
	Content       string
	ContentHash   [32]byte
}

// Status contains statistics about the run store
type Status struct {
	RunsCount  int
	UnitsCount int
	BytesRead  int64
	LastRun    *Run // Nullable - no runs recorded yet
	Health     HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	SchemaVersion      string
}

// UnitsFromPlan assigns every unit to the plan entry it was split from.
// The plan must account for exactly len(units) chunks.
func UnitsFromPlan(plan types.Plan, units []string) ([]Unit, error) {
	if plan.TotalChunks() != len(units) {
		return nil, fmt.Errorf("plan has %d chunks but %d units were given", plan.TotalChunks(), len(units))
	}

	out := make([]Unit, 0, len(units))
	pos := 0
	for entryPos, entry := range plan {
		for i := 0; i < entry.ChunkCount; i++ {
			out = append(out, Unit{
				Position:      pos,
				EntryPosition: entryPos,
				Content:       units[pos],
				ContentHash:   sha256.Sum256([]byte(units[pos])),
			})
			pos++
		}
	}
	return out, nil
}

// Record stores a run with its plan and units in one transaction
func Record(ctx context.Context, store Storage, run *Run, plan types.Plan, units []string) error {
	stored, err := UnitsFromPlan(plan, units)
	if err != nil {
		return err
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.CreateRun(ctx, run); err != nil {
		return err
	}
	if err := tx.InsertPlanEntries(ctx, run.ID, plan); err != nil {
		return err
	}
	if err := tx.InsertUnits(ctx, run.ID, stored); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
