// Package planner decides how many chunks each corpus file is split into.
//
// The planner balances per-chunk size against available parallelism with a
// greedy loop. Every file starts as a single chunk whose estimated size is
// the file size. While some chunk is larger than MaxUnitBytes and no file has
// reached the parallelism budget, the file with the largest estimated chunk
// gains one more chunk.
//
// Both stop conditions are global: once any single file reaches the budget,
// no file is split further, even files whose chunks are still large.
//
// The per-chunk estimate is updated incrementally (size *= n/(n+1)) rather
// than recomputed as byteSize/n, so long runs carry the recurrence's
// floating-point rounding.
//
// Ties on the largest estimate go to the file that comes first in the input.
// The plan keeps input order; it is never re-sorted by size.
//
// An empty file set yields types.ErrNoFilesFound, never an empty plan.
package planner
