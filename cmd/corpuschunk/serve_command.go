package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/corpus-chunker/internal/mcp"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("corpuschunk starting", "version", version, "config", ctx.configPath)
			return server.Serve(cmd.Context())
		},
	}
}
