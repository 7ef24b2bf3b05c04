package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// corpusProperties are the selector arguments shared by plan_chunks and chunk_texts
func corpusProperties() map[string]interface{} {
	return map[string]interface{}{
		"language": map[string]interface{}{
			"type":        "string",
			"description": "Language subdirectory to read (*.txt files). Defaults to the configured corpus.language",
		},
		"text_dir": map[string]interface{}{
			"type":        "string",
			"description": "Base text directory holding one subdirectory per language. Defaults to the configured corpus.text_dir",
		},
	}
}

// planChunksTool returns the tool definition for plan_chunks
func planChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "plan_chunks",
		Description: "Compute how many chunks each text file of a language would be split into, without reading file contents",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: corpusProperties(),
		},
	}
}

// chunkTextsTool returns the tool definition for chunk_texts
func chunkTextsTool() mcp.Tool {
	props := corpusProperties()
	props["include_units"] = map[string]interface{}{
		"type":        "boolean",
		"description": "If true, return the sanitized text units (subject to offset and limit)",
		"default":     false,
	}
	props["offset"] = map[string]interface{}{
		"type":        "integer",
		"description": "Index of the first unit to return",
		"default":     0,
		"minimum":     0,
	}
	props["limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of units to return (1-1000)",
		"default":     100,
		"minimum":     1,
		"maximum":     1000,
	}
	props["store"] = map[string]interface{}{
		"type":        "boolean",
		"description": "If true, persist the run in the run store (requires storage.enabled)",
		"default":     true,
	}

	return mcp.Tool{
		Name:        "chunk_texts",
		Description: "Read, sanitize and split the text files of a language into balanced units",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report server settings, the run in progress and run store statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
