package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/corpus-chunker/internal/config"
	"github.com/dshills/corpus-chunker/internal/pipeline"
	"github.com/dshills/corpus-chunker/internal/storage"
)

type chunkOutput struct {
	Language          string   `json:"language"`
	TextDir           string   `json:"text_dir"`
	RunID             string   `json:"run_id,omitempty"`
	FilesProcessed    int      `json:"files_processed"`
	ChunksCreated     int      `json:"chunks_created"`
	BytesRead         int64    `json:"bytes_read"`
	PlanDurationMS    int64    `json:"plan_duration_ms"`
	ProcessDurationMS int64    `json:"process_duration_ms"`
	DurationMS        int64    `json:"duration_ms"`
	Units             []string `json:"units,omitempty"`
}

func newChunkCommand(ctx *commandContext) *cobra.Command {
	var flags corpusFlags
	var jsonOutput bool
	var countsOnly bool
	var store bool

	cmd := &cobra.Command{
		Use:   "chunk [language]",
		Short: "Read, sanitize and split the text files of a language",
		Long: "Read, sanitize and split the text files of a language.\n\n" +
			"Units are written to stdout one per line, in plan order.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, req, err := ctx.resolve(cmd, args, &flags)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("store") {
				store = cfg.Storage.Enabled
			}

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), req)
			if err != nil {
				return runError(err, req)
			}

			var runID string
			if store {
				runID, err = recordRun(cmd, cfg, p, result, logger)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			stats := result.Stats
			switch {
			case jsonOutput:
				output := chunkOutput{
					Language:          req.Language,
					TextDir:           req.TextDir,
					RunID:             runID,
					FilesProcessed:    stats.FilesProcessed,
					ChunksCreated:     stats.ChunksCreated,
					BytesRead:         stats.BytesRead,
					PlanDurationMS:    stats.PlanDuration.Milliseconds(),
					ProcessDurationMS: stats.ProcessDuration.Milliseconds(),
					DurationMS:        stats.Duration.Milliseconds(),
				}
				if !countsOnly {
					output.Units = result.Units
				}
				return writeJSON(cmd, output)
			case countsOnly:
				fmt.Fprintln(out, renderPlan(result.Plan, isTerminal(out)))
				fmt.Fprintf(out, "%d files, %d units, %s read in %s\n",
					stats.FilesProcessed, stats.ChunksCreated,
					humanize.Bytes(uint64(stats.BytesRead)), stats.Duration.Round(time.Millisecond))
				if runID != "" {
					fmt.Fprintf(out, "Stored run %s\n", runID)
				}
			default:
				for _, unit := range result.Units {
					fmt.Fprintln(out, unit)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&countsOnly, "counts", false, "Print per-file chunk counts instead of units")
	cmd.Flags().BoolVar(&store, "store", false, "Record the run in the run store (default from storage.enabled)")
	return cmd
}

// recordRun persists the result under the writer lock and returns the run ID
func recordRun(cmd *cobra.Command, cfg *config.Config, p *pipeline.Pipeline, result *pipeline.Result, logger *slog.Logger) (string, error) {
	lock := storage.NewWriterLock(cfg.Storage.DBPath)
	if err := lock.TryLock(); err != nil {
		return "", err
	}
	defer func() { _ = lock.Unlock() }()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		return "", fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	stats := result.Stats
	run := &storage.Run{
		Language:    result.Request.Language,
		TextDir:     result.Request.TextDir,
		Parallelism: p.Parallelism(),
		Workers:     p.Workers(),
		Files:       stats.FilesProcessed,
		Chunks:      stats.ChunksCreated,
		BytesRead:   stats.BytesRead,
		Duration:    stats.Duration,
	}
	if err := storage.Record(cmd.Context(), store, run, result.Plan, result.Units); err != nil {
		return "", fmt.Errorf("store run: %w", err)
	}

	logger.Info("run stored", "run_id", run.ID, "db_path", cfg.Storage.DBPath)
	return run.ID, nil
}
