package types

import "fmt"

// SourceFile is a text file discovered for a corpus selector
type SourceFile struct {
	Path     string
	ByteSize int64
}

// PlanEntry assigns a chunk count to one source file
type PlanEntry struct {
	Path       string
	ByteSize   int64
	ChunkCount int
}

// Validate checks the entry invariants
func (e PlanEntry) Validate() error {
	if e.Path == "" {
		return ErrEmptyPath
	}
	if e.ChunkCount < 1 {
		return fmt.Errorf("%w: %s has %d", ErrInvalidChunkCount, e.Path, e.ChunkCount)
	}
	return nil
}

// Plan is the ordered set of entries produced by the planner, one per file
type Plan []PlanEntry

// TotalChunks returns the number of text units the plan will produce
func (p Plan) TotalChunks() int {
	total := 0
	for _, e := range p {
		total += e.ChunkCount
	}
	return total
}

// TotalBytes returns the summed size of all planned files
func (p Plan) TotalBytes() int64 {
	var total int64
	for _, e := range p {
		total += e.ByteSize
	}
	return total
}

// Validate checks every entry and rejects duplicate paths
func (p Plan) Validate() error {
	seen := make(map[string]struct{}, len(p))
	for _, e := range p {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.Path]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, e.Path)
		}
		seen[e.Path] = struct{}{}
	}
	return nil
}
