package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/corpus-chunker/internal/pipeline"
	"github.com/dshills/corpus-chunker/pkg/types"
)

type planEntryOutput struct {
	Path       string `json:"path"`
	ByteSize   int64  `json:"byte_size"`
	ChunkCount int    `json:"chunk_count"`
}

type planOutput struct {
	Language    string            `json:"language"`
	TextDir     string            `json:"text_dir"`
	Parallelism int               `json:"parallelism"`
	Files       int               `json:"files"`
	TotalChunks int               `json:"total_chunks"`
	TotalBytes  int64             `json:"total_bytes"`
	Entries     []planEntryOutput `json:"entries"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags corpusFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan [language]",
		Short: "Show how many chunks each text file would be split into",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, req, err := ctx.resolve(cmd, args, &flags)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			p, err := pipeline.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			plan, err := p.Plan(cmd.Context(), req)
			if err != nil {
				return runError(err, req)
			}

			if jsonOutput {
				return writeJSON(cmd, newPlanOutput(req, p.Parallelism(), plan))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlan(plan, isTerminal(out)))
			fmt.Fprintf(out, "%d files, %d chunks, %s (parallelism %d)\n",
				len(plan), plan.TotalChunks(), humanize.Bytes(uint64(plan.TotalBytes())), p.Parallelism())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPlanOutput(req pipeline.Request, parallelism int, plan types.Plan) planOutput {
	entries := make([]planEntryOutput, 0, len(plan))
	for _, entry := range plan {
		entries = append(entries, planEntryOutput{
			Path:       entry.Path,
			ByteSize:   entry.ByteSize,
			ChunkCount: entry.ChunkCount,
		})
	}
	return planOutput{
		Language:    req.Language,
		TextDir:     req.TextDir,
		Parallelism: parallelism,
		Files:       len(plan),
		TotalChunks: plan.TotalChunks(),
		TotalBytes:  plan.TotalBytes(),
		Entries:     entries,
	}
}

func renderPlan(plan types.Plan, styled bool) string {
	list := newListing(
		column{title: "File"},
		column{title: "Size", numeric: true},
		column{title: "Chunks", numeric: true},
	)
	for _, entry := range plan {
		list.add(
			filepath.Base(entry.Path),
			humanize.Bytes(uint64(entry.ByteSize)),
			strconv.Itoa(entry.ChunkCount),
		)
	}
	list.total(
		"Total",
		humanize.Bytes(uint64(plan.TotalBytes())),
		strconv.Itoa(plan.TotalChunks()),
	)
	return list.render(styled)
}
