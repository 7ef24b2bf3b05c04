package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/corpus-chunker/pkg/types"
)

// Request selects the files of one language under a text directory
type Request struct {
	Language string
	TextDir  string
}

// Pattern returns the glob matched by the request
func (r Request) Pattern() string {
	return filepath.Join(r.TextDir, r.Language, "*.txt")
}

// Resolver turns a request into the files to chunk
type Resolver interface {
	Resolve(ctx context.Context, req Request) ([]types.SourceFile, error)
}

// GlobResolver matches {TextDir}/{Language}/*.txt in lexical order
type GlobResolver struct{}

// Resolve implements Resolver
func (GlobResolver) Resolve(ctx context.Context, req Request) ([]types.SourceFile, error) {
	paths, err := filepath.Glob(req.Pattern())
	if err != nil {
		return nil, fmt.Errorf("failed to match %s: %w", req.Pattern(), err)
	}

	files := make([]types.SourceFile, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, types.SourceFile{Path: path, ByteSize: info.Size()})
	}
	return files, nil
}
