package pipeline

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies a split result by raw content and chunk count
type cacheKey struct {
	hash       [32]byte
	chunkCount int
}

// splitCache remembers sanitized pieces of previously seen file contents
type splitCache struct {
	entries *lru.Cache[cacheKey, []string]
}

func newSplitCache(size int) (*splitCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[cacheKey, []string](size)
	if err != nil {
		return nil, err
	}
	return &splitCache{entries: entries}, nil
}

func keyFor(content []byte, chunkCount int) cacheKey {
	return cacheKey{hash: sha256.Sum256(content), chunkCount: chunkCount}
}

func (c *splitCache) get(key cacheKey) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *splitCache) add(key cacheKey, pieces []string) {
	if c == nil {
		return
	}
	c.entries.Add(key, pieces)
}

func (c *splitCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
