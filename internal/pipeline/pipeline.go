package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/corpus-chunker/internal/chunker"
	"github.com/dshills/corpus-chunker/internal/config"
	"github.com/dshills/corpus-chunker/internal/planner"
	"github.com/dshills/corpus-chunker/internal/sanitize"
	"github.com/dshills/corpus-chunker/pkg/types"
)

// Pipeline coordinates the chunking pipeline: resolve -> plan -> read -> sanitize -> split
type Pipeline struct {
	resolver Resolver
	planner  *planner.Planner
	chunker  *chunker.Chunker
	cache    *splitCache
	logger   *slog.Logger

	// Worker pool configuration
	workers int

	readFile func(path string) ([]byte, error)
}

// Config contains configuration for the pipeline
type Config struct {
	Workers      int             // Number of concurrent file workers (default: runtime.NumCPU())
	Parallelism  int             // Planner chunk budget per file (default: runtime.NumCPU())
	MaxUnitBytes float64         // Planner size target per chunk (default: 2,000,000)
	CacheEntries int             // Split results kept across runs; 0 disables the cache
	Table        *sanitize.Table // Translation table (default: sanitize.Default())
}

// Statistics contains statistics about a chunk run
type Statistics struct {
	FilesProcessed  int
	ChunksCreated   int
	BytesRead       int64
	CacheHits       int
	PlanDuration    time.Duration
	ProcessDuration time.Duration
	Duration        time.Duration
}

// Result is the output of a complete run
type Result struct {
	Request Request
	Plan    types.Plan
	Units   []string
	Stats   Statistics
}

// New creates a Pipeline that discovers files with GlobResolver
func New(opts *Config, logger *slog.Logger) (*Pipeline, error) {
	return NewWithResolver(opts, GlobResolver{}, logger)
}

// NewWithResolver creates a Pipeline with a custom file resolver
func NewWithResolver(opts *Config, resolver Resolver, logger *slog.Logger) (*Pipeline, error) {
	if opts == nil {
		opts = &Config{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cache, err := newSplitCache(opts.CacheEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create split cache: %w", err)
	}

	plnr := planner.New(planner.Options{
		Parallelism:  opts.Parallelism,
		MaxUnitBytes: opts.MaxUnitBytes,
	}, logger)

	return &Pipeline{
		resolver: resolver,
		planner:  plnr,
		chunker:  chunker.New(opts.Table),
		cache:    cache,
		logger:   logger,
		workers:  workers,
		readFile: os.ReadFile,
	}, nil
}

// FromConfig creates a Pipeline from the [planner] and [pipeline] sections
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	return New(&Config{
		Workers:      cfg.Pipeline.Workers,
		Parallelism:  cfg.Planner.Parallelism,
		MaxUnitBytes: float64(cfg.Planner.MaxUnitBytes),
		CacheEntries: cfg.Pipeline.CacheEntries,
	}, logger)
}

// Workers returns the size of the worker pool
func (p *Pipeline) Workers() int {
	return p.workers
}

// Parallelism returns the planner's chunk budget
func (p *Pipeline) Parallelism() int {
	return p.planner.Parallelism()
}

// Plan resolves the request and computes its chunk plan without reading content.
// A request matching no files returns types.ErrNoFilesFound.
func (p *Pipeline) Plan(ctx context.Context, req Request) (types.Plan, error) {
	files, err := p.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	plan, err := p.planner.Plan(files)
	if err != nil {
		return nil, fmt.Errorf("%w for language %q in %s", err, req.Language, req.TextDir)
	}
	return plan, nil
}

// Run plans the request and produces the flattened text units in plan order
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	plan, err := p.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	planDuration := time.Since(startTime)

	units, stats, err := p.Process(ctx, plan)
	if err != nil {
		return nil, err
	}
	stats.PlanDuration = planDuration
	stats.Duration = time.Since(startTime)

	p.logger.Info("chunk run complete",
		"language", req.Language,
		"text_dir", req.TextDir,
		"files", stats.FilesProcessed,
		"chunks", stats.ChunksCreated,
		"bytes", stats.BytesRead,
		"cache_hits", stats.CacheHits,
		"plan_duration", stats.PlanDuration,
		"process_duration", stats.ProcessDuration)

	return &Result{Request: req, Plan: plan, Units: units, Stats: *stats}, nil
}

// Process reads every planned file exactly once, sanitizes and splits it, and
// concatenates the pieces in plan order. The first read failure cancels the
// remaining work and is returned; no partial output is produced.
func (p *Pipeline) Process(ctx context.Context, plan types.Plan) ([]string, *Statistics, error) {
	if len(plan) == 0 {
		return nil, nil, types.ErrNoFilesFound
	}
	if err := plan.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid plan: %w", err)
	}

	startTime := time.Now()

	// Create worker pool with semaphore
	semaphore := make(chan struct{}, p.workers)

	// Each file writes only its own slot, so no lock is needed
	results := make([][]string, len(plan))

	var (
		bytesRead atomic.Int64
		cacheHits atomic.Int32
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range plan {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire semaphore
			}
			defer func() { <-semaphore }()

			pieces, n, hit, err := p.processEntry(gctx, entry)
			if err != nil {
				return err
			}
			results[i] = pieces
			bytesRead.Add(n)
			if hit {
				cacheHits.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to process files: %w", err)
	}

	units := make([]string, 0, plan.TotalChunks())
	for _, pieces := range results {
		units = append(units, pieces...)
	}

	stats := &Statistics{
		FilesProcessed:  len(plan),
		ChunksCreated:   len(units),
		BytesRead:       bytesRead.Load(),
		CacheHits:       int(cacheHits.Load()),
		ProcessDuration: time.Since(startTime),
	}
	return units, stats, nil
}

// processEntry reads, sanitizes and splits a single file
func (p *Pipeline) processEntry(ctx context.Context, entry types.PlanEntry) ([]string, int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, false, err
	}

	content, err := p.readFile(entry.Path)
	if err != nil {
		return nil, 0, false, &types.FileReadError{Path: entry.Path, Err: err}
	}

	key := keyFor(content, entry.ChunkCount)
	if pieces, ok := p.cache.get(key); ok {
		p.logger.Debug("split cache hit", "path", entry.Path, "chunks", entry.ChunkCount)
		return pieces, int64(len(content)), true, nil
	}

	pieces := p.chunker.ChunkText(string(content), entry.ChunkCount)
	p.cache.add(key, pieces)

	p.logger.Debug("file chunked",
		"path", entry.Path,
		"bytes", len(content),
		"chunks", len(pieces))

	return pieces, int64(len(content)), false, nil
}

// CachedEntries reports how many split results the cache holds
func (p *Pipeline) CachedEntries() int {
	return p.cache.len()
}
