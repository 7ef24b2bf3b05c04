package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/corpus-chunker/internal/config"
	"github.com/dshills/corpus-chunker/internal/pipeline"
	"github.com/dshills/corpus-chunker/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "corpuschunk"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	pipeline *pipeline.Pipeline
	storage  storage.Storage // nil when the run store is disabled
	defaults pipeline.Request
	lock     pipeline.RunLock
	writer   *storage.WriterLock
	logger   *slog.Logger
}

// NewServer creates a new MCP server instance from configuration
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	// Only one server may write to a run store at a time. The lock is taken
	// before opening so migrations never run unlocked.
	var store storage.Storage
	var writer *storage.WriterLock
	if cfg.Storage.Enabled {
		writer = storage.NewWriterLock(cfg.Storage.DBPath)
		if err := writer.TryLock(); err != nil {
			return nil, err
		}
		store, err = storage.NewSQLiteStorage(cfg.Storage.DBPath)
		if err != nil {
			_ = writer.Unlock()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	defaults := pipeline.Request{
		Language: cfg.Corpus.Language,
		TextDir:  cfg.Corpus.TextDir,
	}
	s := newServer(p, store, defaults, logger)
	s.writer = writer
	return s, nil
}

// newServer wires an already built pipeline and optional store
func newServer(p *pipeline.Pipeline, store storage.Storage, defaults pipeline.Request, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:      mcpServer,
		pipeline: p,
		storage:  store,
		defaults: defaults,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	s.logger.Info("mcp server listening on stdio",
		"workers", s.pipeline.Workers(),
		"parallelism", s.pipeline.Parallelism(),
		"storage", s.storage != nil)

	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases the run store and its writer lock, if any
func (s *Server) Close() error {
	if s.storage == nil {
		return nil
	}
	err := s.storage.Close()
	if s.writer != nil {
		if unlockErr := s.writer.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Register plan_chunks tool
	s.mcp.AddTool(planChunksTool(), s.handlePlanChunks)

	// Register chunk_texts tool
	s.mcp.AddTool(chunkTextsTool(), s.handleChunkTexts)

	// Register get_status tool
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
