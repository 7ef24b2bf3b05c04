// Package chunker splits a file's sanitized text into contiguous pieces.
//
// The chunk count comes from the planner; the chunker only cuts. Pieces are
// fixed-width, left to right, and never overlap:
//
//	chunker.Split("abcdefghij", 3) // ["abcd", "efgh", "ij"]
//
// The width is W/n+1 characters (integer division plus one, not a ceiling),
// so the trailing pieces absorb the slack and may come out empty:
//
//	chunker.Split("abcdef", 4) // ["ab", "cd", "ef", ""]
//
// Chunker combines sanitizing with splitting:
//
//	c := chunker.New(nil) // process-wide translation table
//	units := c.ChunkText(raw, entry.ChunkCount)
package chunker
