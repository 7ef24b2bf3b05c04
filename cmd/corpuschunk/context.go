package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dshills/corpus-chunker/internal/config"
	"github.com/dshills/corpus-chunker/internal/logging"
	"github.com/dshills/corpus-chunker/internal/pipeline"
	"github.com/dshills/corpus-chunker/pkg/types"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configHit  bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configHit = exists
	})
	return c.config, c.configErr
}

// logger writes to the command's stderr so stdout stays clean for output
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, cmd.ErrOrStderr())
}

// corpusFlags select the corpus and override planner and pool settings
type corpusFlags struct {
	textDir     string
	parallelism int
	workers     int
}

func (f *corpusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.textDir, "text-dir", "d", "", "Base text directory (default from config)")
	cmd.Flags().IntVarP(&f.parallelism, "parallelism", "p", 0, "Maximum chunks per file (default from config, 0 = CPUs)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Concurrent file workers (default from config, 0 = CPUs)")
}

// resolve applies the flags to a copy of the configuration and builds the request
func (c *commandContext) resolve(cmd *cobra.Command, args []string, flags *corpusFlags) (*config.Config, pipeline.Request, error) {
	base, err := c.ensureConfig()
	if err != nil {
		return nil, pipeline.Request{}, err
	}
	cfg := *base

	if cmd.Flags().Changed("text-dir") {
		dir, err := config.ExpandPath(flags.textDir)
		if err != nil {
			return nil, pipeline.Request{}, fmt.Errorf("resolve text directory: %w", err)
		}
		cfg.Corpus.TextDir = dir
	}
	if cmd.Flags().Changed("parallelism") {
		cfg.Planner.Parallelism = flags.parallelism
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = flags.workers
	}
	if len(args) > 0 {
		cfg.Corpus.Language = strings.TrimSpace(args[0])
	}

	if cfg.Corpus.Language == "" {
		return nil, pipeline.Request{}, errors.New("language is required (pass it as an argument or set corpus.language)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, pipeline.Request{}, err
	}

	req := pipeline.Request{Language: cfg.Corpus.Language, TextDir: cfg.Corpus.TextDir}
	return &cfg, req, nil
}

// runError rewrites the no-files sentinel into the user-facing message
func runError(err error, req pipeline.Request) error {
	if errors.Is(err, types.ErrNoFilesFound) {
		return fmt.Errorf("%w for %s in %s", types.ErrNoFilesFound, req.Language, req.TextDir)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
