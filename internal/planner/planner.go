package planner

import (
	"log/slog"
	"runtime"

	"github.com/dshills/corpus-chunker/pkg/types"
)

// DefaultMaxUnitBytes is the chunk size below which a file is not split further
const DefaultMaxUnitBytes = 2_000_000

// Options controls the balancing loop
type Options struct {
	Parallelism  int     // Chunk count at which splitting stops (default: runtime.NumCPU())
	MaxUnitBytes float64 // Target upper bound per chunk (default: DefaultMaxUnitBytes)
}

// Planner computes chunk plans
type Planner struct {
	parallelism  int
	maxUnitBytes float64
	logger       *slog.Logger
}

// entry is the planner's working state for one file
type entry struct {
	file       types.SourceFile
	chunkCount int
	unitSize   float64
}

// New creates a Planner. Zero option values take their defaults and a
// parallelism below one is treated as one.
func New(opts Options, logger *slog.Logger) *Planner {
	if opts.Parallelism == 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.MaxUnitBytes <= 0 {
		opts.MaxUnitBytes = DefaultMaxUnitBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Planner{
		parallelism:  opts.Parallelism,
		maxUnitBytes: opts.MaxUnitBytes,
		logger:       logger,
	}
}

// Parallelism returns the effective budget
func (p *Planner) Parallelism() int {
	return p.parallelism
}

// Plan assigns a chunk count to every file, preserving input order
func (p *Planner) Plan(files []types.SourceFile) (types.Plan, error) {
	if len(files) == 0 {
		return nil, types.ErrNoFilesFound
	}

	entries := make([]entry, len(files))
	for i, f := range files {
		entries[i] = entry{file: f, chunkCount: 1, unitSize: float64(f.ByteSize)}
	}

	steps := 0
	for !p.allSmall(entries) && !p.saturated(entries) {
		e := &entries[largest(entries)]
		e.unitSize *= float64(e.chunkCount) / float64(e.chunkCount+1)
		e.chunkCount++
		steps++
	}

	plan := make(types.Plan, len(entries))
	for i, e := range entries {
		plan[i] = types.PlanEntry{
			Path:       e.file.Path,
			ByteSize:   e.file.ByteSize,
			ChunkCount: e.chunkCount,
		}
	}

	p.logger.Debug("chunk plan computed",
		"files", len(plan),
		"chunks", plan.TotalChunks(),
		"steps", steps,
		"parallelism", p.parallelism,
		"saturated", p.saturated(entries))

	return plan, nil
}

// allSmall reports whether every estimated chunk is within the size target
func (p *Planner) allSmall(entries []entry) bool {
	for i := range entries {
		if entries[i].unitSize > p.maxUnitBytes {
			return false
		}
	}
	return true
}

// saturated reports whether any file has reached the parallelism budget
func (p *Planner) saturated(entries []entry) bool {
	for i := range entries {
		if entries[i].chunkCount >= p.parallelism {
			return true
		}
	}
	return false
}

// largest returns the index of the biggest estimated chunk; ties go to the
// earliest entry.
func largest(entries []entry) int {
	best := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].unitSize > entries[best].unitSize {
			best = i
		}
	}
	return best
}
