package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/corpus-chunker/internal/pipeline"
	"github.com/dshills/corpus-chunker/internal/storage"
	"github.com/dshills/corpus-chunker/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNoFilesFound       = -32001 // No *.txt files for the language
	ErrorCodeRunInProgress      = -32002 // Another chunk run is already running
	ErrorCodeReadFailed         = -32003 // A planned file could not be read
	ErrorCodeStorageUnavailable = -32004 // store requested but storage is disabled
)

const (
	defaultUnitLimit = 100
	maxUnitLimit     = 1000
)

// handlePlanChunks handles the plan_chunks tool invocation
func (s *Server) handlePlanChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.corpusRequest(request)
	if err != nil {
		return nil, err
	}

	plan, err := s.pipeline.Plan(ctx, req)
	if err != nil {
		return nil, pipelineError(err, req)
	}

	entries := make([]map[string]interface{}, 0, len(plan))
	for _, entry := range plan {
		entries = append(entries, map[string]interface{}{
			"path":        entry.Path,
			"byte_size":   entry.ByteSize,
			"chunk_count": entry.ChunkCount,
		})
	}

	response := map[string]interface{}{
		"language":     req.Language,
		"text_dir":     req.TextDir,
		"parallelism":  s.pipeline.Parallelism(),
		"files":        len(plan),
		"total_chunks": plan.TotalChunks(),
		"total_bytes":  plan.TotalBytes(),
		"entries":      entries,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleChunkTexts handles the chunk_texts tool invocation
func (s *Server) handleChunkTexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.corpusRequest(request)
	if err != nil {
		return nil, err
	}
	args, _ := request.Params.Arguments.(map[string]interface{})

	// Parse optional parameters
	includeUnits := getBoolDefault(args, "include_units", false)
	offset := getIntDefault(args, "offset", 0)
	if offset < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "offset must not be negative", map[string]interface{}{
			"param": "offset",
			"value": offset,
		})
	}
	limit := getIntDefault(args, "limit", defaultUnitLimit)
	if limit < 1 || limit > maxUnitLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxUnitLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	_, storeRequested := args["store"]
	store := getBoolDefault(args, "store", s.storage != nil)
	if store && s.storage == nil {
		if storeRequested {
			return nil, newMCPError(ErrorCodeStorageUnavailable, "storage is disabled", map[string]interface{}{
				"hint": "set storage.enabled = true in the configuration",
			})
		}
		store = false
	}

	if !s.lock.TryAcquire(req) {
		holder, _ := s.lock.Holder()
		return nil, newMCPError(ErrorCodeRunInProgress, "a chunk run is already in progress", map[string]interface{}{
			"language": holder.Language,
			"text_dir": holder.TextDir,
		})
	}
	defer s.lock.Release()

	result, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return nil, pipelineError(err, req)
	}

	stats := result.Stats
	response := map[string]interface{}{
		"language":            req.Language,
		"text_dir":            req.TextDir,
		"files_processed":     stats.FilesProcessed,
		"chunks_created":      stats.ChunksCreated,
		"bytes_read":          stats.BytesRead,
		"cache_hits":          stats.CacheHits,
		"plan_duration_ms":    stats.PlanDuration.Milliseconds(),
		"process_duration_ms": stats.ProcessDuration.Milliseconds(),
		"duration_ms":         stats.Duration.Milliseconds(),
	}

	if store {
		run := &storage.Run{
			Language:    req.Language,
			TextDir:     req.TextDir,
			Parallelism: s.pipeline.Parallelism(),
			Workers:     s.pipeline.Workers(),
			Files:       stats.FilesProcessed,
			Chunks:      stats.ChunksCreated,
			BytesRead:   stats.BytesRead,
			Duration:    stats.Duration,
		}
		if err := storage.Record(ctx, s.storage, run, result.Plan, result.Units); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to store run", map[string]interface{}{
				"error": err.Error(),
			})
		}
		response["run_id"] = run.ID
	}

	if includeUnits {
		response["offset"] = offset
		response["units"] = pageUnits(result.Units, offset, limit)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"server": map[string]interface{}{
			"workers":        s.pipeline.Workers(),
			"parallelism":    s.pipeline.Parallelism(),
			"cached_entries": s.pipeline.CachedEntries(),
			"language":       s.defaults.Language,
			"text_dir":       s.defaults.TextDir,
		},
		"storage_enabled": s.storage != nil,
	}

	if holder, running := s.lock.Holder(); running {
		response["running"] = map[string]interface{}{
			"language": holder.Language,
			"text_dir": holder.TextDir,
		}
	}

	if s.storage == nil {
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	statistics := map[string]interface{}{
		"runs_count":  status.RunsCount,
		"units_count": status.UnitsCount,
		"bytes_read":  status.BytesRead,
	}
	if status.LastRun != nil {
		statistics["last_run"] = map[string]interface{}{
			"id":         status.LastRun.ID,
			"language":   status.LastRun.Language,
			"chunks":     status.LastRun.Chunks,
			"created_at": status.LastRun.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	response["statistics"] = statistics
	response["health"] = map[string]interface{}{
		"database_accessible": status.Health.DatabaseAccessible,
		"schema_version":      status.Health.SchemaVersion,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// corpusRequest builds the selector from the arguments and server defaults
func (s *Server) corpusRequest(request mcp.CallToolRequest) (pipeline.Request, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments != nil {
		return pipeline.Request{}, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req := pipeline.Request{
		Language: strings.TrimSpace(getStringDefault(args, "language", s.defaults.Language)),
		TextDir:  getStringDefault(args, "text_dir", s.defaults.TextDir),
	}

	if err := validateLanguage(req.Language); err != nil {
		return pipeline.Request{}, newMCPError(ErrorCodeInvalidParams, "invalid language", map[string]interface{}{
			"param":  "language",
			"reason": err.Error(),
		})
	}
	if err := validateTextDir(req.TextDir); err != nil {
		return pipeline.Request{}, newMCPError(ErrorCodeInvalidParams, "invalid text_dir", map[string]interface{}{
			"param":  "text_dir",
			"reason": err.Error(),
		})
	}
	return req, nil
}

// pipelineError maps pipeline failures onto MCP error codes
func pipelineError(err error, req pipeline.Request) error {
	var readErr *types.FileReadError
	switch {
	case errors.Is(err, types.ErrNoFilesFound):
		return newMCPError(ErrorCodeNoFilesFound, "no text files found", map[string]interface{}{
			"language": req.Language,
			"text_dir": req.TextDir,
		})
	case errors.As(err, &readErr):
		return newMCPError(ErrorCodeReadFailed, "failed to read text file", map[string]interface{}{
			"path":  readErr.Path,
			"error": readErr.Err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "chunk run failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// pageUnits returns units[offset:offset+limit], clamped to the slice
func pageUnits(units []string, offset, limit int) []string {
	if offset >= len(units) {
		return []string{}
	}
	end := offset + limit
	if end > len(units) {
		end = len(units)
	}
	return units[offset:end]
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateLanguage rejects selectors that could escape the text directory
func validateLanguage(language string) error {
	if language == "" {
		return ErrLanguageRequired
	}
	if strings.ContainsAny(language, `/\`) || language == "." || language == ".." {
		return ErrInvalidLanguage
	}
	return nil
}

// validateTextDir checks if a directory exists and is accessible
func validateTextDir(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it's a directory
	if !info.IsDir() {
		return ErrNotDirectory
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrLanguageRequired = errors.New("language is required")
	ErrInvalidLanguage  = errors.New("language must be a single directory name")
	ErrPathRequired     = errors.New("path is required")
	ErrPathNotFound     = errors.New("path does not exist")
	ErrPathNotReadable  = errors.New("path is not readable")
	ErrNotDirectory     = errors.New("path is not a directory")
)
