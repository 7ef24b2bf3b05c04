// Package pipeline turns a language/directory selector into the flat,
// ordered sequence of sanitized text units consumed by corpus analysis.
//
// # Pipeline
//
//  1. Resolve: match {TextDir}/{Language}/*.txt (GlobResolver, lexical order)
//  2. Plan: assign chunk counts with the planner
//  3. Process: per file, read once, sanitize, split (parallel)
//  4. Join: concatenate pieces in plan order, left to right within a file
//
// A selector matching no files fails with types.ErrNoFilesFound before any
// file is read:
//
//	result, err := p.Run(ctx, pipeline.Request{Language: "en", TextDir: "texts"})
//	if errors.Is(err, types.ErrNoFilesFound) {
//	    // nothing to chunk
//	}
//
// # Concurrency
//
// Read, sanitize and split are fused into one task per file. Tasks run in an
// errgroup bounded by a semaphore of Config.Workers slots. Each task writes
// only its own result slot and the join happens after every task finished,
// so completion order never affects output order.
//
// # Errors
//
// Read failures are fail-fast: the first *types.FileReadError cancels the
// remaining tasks and Run returns it without partial output.
//
// # Split Cache
//
// With Config.CacheEntries > 0, split results are kept in an LRU keyed by the
// SHA-256 of the raw file content and the chunk count. Files are still read
// on every run; only sanitizing and splitting are skipped for unchanged
// content.
package pipeline
