// Package mcp implements the Model Context Protocol (MCP) server for corpuschunk.
//
// The MCP server exposes three tools:
//   - plan_chunks: Compute the chunk plan for a language without reading content
//   - chunk_texts: Run the full pipeline and optionally store the run
//   - get_status: Report settings, the run in progress and store statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport. The server is started
// with:
//
//	corpuschunk serve
//
// It listens on stdin for MCP protocol messages and writes responses to stdout.
// Logs go to stderr.
//
// # Tool: plan_chunks
//
//	Request:
//	{
//	  "name": "plan_chunks",
//	  "arguments": {"language": "english", "text_dir": "/data/texts"}
//	}
//
//	Response:
//	{
//	  "files": 2,
//	  "total_chunks": 3,
//	  "entries": [
//	    {"path": "/data/texts/english/a.txt", "byte_size": 500000, "chunk_count": 1},
//	    {"path": "/data/texts/english/b.txt", "byte_size": 3000000, "chunk_count": 2}
//	  ]
//	}
//
// Both arguments default to the configured [corpus] section.
//
// # Tool: chunk_texts
//
// Takes the plan_chunks arguments plus include_units, offset, limit and store.
// Only one chunk run executes at a time; a second concurrent call fails with
// -32002 instead of waiting.
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: No text files found for the language
//   - -32002: Chunk run in progress
//   - -32003: A text file could not be read
//   - -32004: Storage requested but disabled
package mcp
