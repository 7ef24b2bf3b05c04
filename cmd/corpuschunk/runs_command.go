package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/corpus-chunker/internal/storage"
)

type runOutput struct {
	ID          string    `json:"id"`
	Language    string    `json:"language"`
	TextDir     string    `json:"text_dir"`
	Parallelism int       `json:"parallelism"`
	Workers     int       `json:"workers"`
	Files       int       `json:"files"`
	Chunks      int       `json:"chunks"`
	BytesRead   int64     `json:"bytes_read"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRunOutput(run *storage.Run) runOutput {
	return runOutput{
		ID:          run.ID,
		Language:    run.Language,
		TextDir:     run.TextDir,
		Parallelism: run.Parallelism,
		Workers:     run.Workers,
		Files:       run.Files,
		Chunks:      run.Chunks,
		BytesRead:   run.BytesRead,
		DurationMS:  run.Duration.Milliseconds(),
		CreatedAt:   run.CreatedAt,
	}
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var language string
	var limit int
	var jsonOutput bool

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored chunk runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store storage.Storage) error {
				runs, err := store.ListRuns(cmd.Context(), language, limit)
				if err != nil {
					return err
				}

				if jsonOutput {
					output := make([]runOutput, 0, len(runs))
					for _, run := range runs {
						output = append(output, newRunOutput(run))
					}
					return writeJSON(cmd, output)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				list := newListing(
					column{title: "ID"},
					column{title: "Created"},
					column{title: "Language"},
					column{title: "Files", numeric: true},
					column{title: "Chunks", numeric: true},
					column{title: "Read", numeric: true},
					column{title: "Duration", numeric: true},
				)
				for _, run := range runs {
					list.add(
						run.ID,
						run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						run.Language,
						strconv.Itoa(run.Files),
						strconv.Itoa(run.Chunks),
						humanize.Bytes(uint64(run.BytesRead)),
						run.Duration.String(),
					)
				}
				fmt.Fprintln(out, list.render(isTerminal(out)))
				return nil
			})
		},
	}

	runsCmd.Flags().StringVarP(&language, "language", "l", "", "Only list runs for this language")
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	runsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsDeleteCommand(ctx))
	return runsCmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var showUnits bool
	var offset int
	var limit int

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run and its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store storage.Storage) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return runNotFound(err, args[0])
				}

				out := cmd.OutOrStdout()
				if showUnits {
					units, err := store.ListUnits(cmd.Context(), run.ID, offset, limit)
					if err != nil {
						return err
					}
					for _, unit := range units {
						fmt.Fprintln(out, unit.Content)
					}
					return nil
				}

				plan, err := store.ListPlanEntries(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Run:         %s\n", run.ID)
				fmt.Fprintf(out, "Created:     %s\n", run.CreatedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Language:    %s\n", run.Language)
				fmt.Fprintf(out, "Text dir:    %s\n", run.TextDir)
				fmt.Fprintf(out, "Parallelism: %d (workers %d)\n", run.Parallelism, run.Workers)
				fmt.Fprintf(out, "Read:        %s in %s\n", humanize.Bytes(uint64(run.BytesRead)), run.Duration)
				fmt.Fprintln(out, renderPlan(plan, isTerminal(out)))
				fmt.Fprintf(out, "%d files, %d units\n", len(plan), plan.TotalChunks())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showUnits, "units", false, "Print the stored units instead of the plan")
	cmd.Flags().IntVar(&offset, "offset", 0, "First unit to print with --units")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum units to print with --units (0 = all)")
	return cmd
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run with its plan and units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock := storage.NewWriterLock(cfg.Storage.DBPath)
			if err := lock.TryLock(); err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withStore(func(store storage.Storage) error {
				if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
					return runNotFound(err, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured run store for the duration of fn
func (c *commandContext) withStore(fn func(storage.Storage) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func runNotFound(err error, runID string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %s not found", runID)
	}
	return err
}
