package types

import (
	"errors"
	"fmt"
)

// Corpus errors
var (
	// ErrNoFilesFound is returned when a selector resolves to zero text files.
	// It is a distinct outcome, never an empty plan.
	ErrNoFilesFound = errors.New("no text files found")

	ErrEmptyPath         = errors.New("file path is required")
	ErrInvalidChunkCount = errors.New("chunk count must be >= 1")
	ErrDuplicatePath     = errors.New("duplicate file path in plan")
)

// FileReadError reports a failed read of one corpus file
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error
func (e *FileReadError) Unwrap() error {
	return e.Err
}
