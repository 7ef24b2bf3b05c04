// Package types provides shared type definitions for corpus chunking.
//
// SourceFile is a discovered text file and its size. The planner turns a
// list of them into a Plan, one PlanEntry per file in discovery order:
//
//	plan := types.Plan{
//	    {Path: "texts/english/a.txt", ByteSize: 500_000, ChunkCount: 1},
//	    {Path: "texts/english/b.txt", ByteSize: 3_000_000, ChunkCount: 2},
//	}
//	plan.TotalChunks() // 3
//
// # Errors
//
// ErrNoFilesFound is returned instead of an empty plan when a selector
// matches nothing; test for it with errors.Is. A failed read surfaces as a
// *FileReadError carrying the path and the underlying I/O error.
//
// # Validation
//
//	if err := plan.Validate(); err != nil {
//	    return err
//	}
package types
