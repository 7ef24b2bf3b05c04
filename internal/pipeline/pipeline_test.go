package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/corpus-chunker/internal/config"
	"github.com/dshills/corpus-chunker/pkg/types"
)

// writeCorpus creates {dir}/{language}/{name} for every entry in files
func writeCorpus(t *testing.T, language string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	langDir := filepath.Join(dir, language)
	require.NoError(t, os.MkdirAll(langDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(langDir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestPipeline(t *testing.T, opts *Config) *Pipeline {
	t.Helper()
	p, err := New(opts, nil)
	require.NoError(t, err)
	return p
}

func TestNew_Defaults(t *testing.T) {
	p := newTestPipeline(t, nil)
	assert.Greater(t, p.Workers(), 0)
	assert.Greater(t, p.Parallelism(), 0)
	assert.Equal(t, 0, p.CachedEntries())
}

func TestRun_EndToEnd(t *testing.T) {
	dir := writeCorpus(t, "en", map[string]string{
		"a.txt": "Café—NOW+5", // 13 bytes
		"b.txt": "ABCDEFGHIJ", // 10 bytes
	})
	p := newTestPipeline(t, &Config{Workers: 2, Parallelism: 4, MaxUnitBytes: 5})

	result, err := p.Run(context.Background(), Request{Language: "en", TextDir: dir})
	require.NoError(t, err)

	require.Len(t, result.Plan, 2)
	assert.Equal(t, filepath.Join(dir, "en", "a.txt"), result.Plan[0].Path)
	assert.Equal(t, 3, result.Plan[0].ChunkCount)
	assert.Equal(t, 2, result.Plan[1].ChunkCount)

	assert.Equal(t, []string{"cafe", "-now", "=5", "abcdef", "ghij"}, result.Units)
	assert.Equal(t, 2, result.Stats.FilesProcessed)
	assert.Equal(t, 5, result.Stats.ChunksCreated)
	assert.Equal(t, int64(23), result.Stats.BytesRead)
	assert.GreaterOrEqual(t, result.Stats.Duration, result.Stats.ProcessDuration)
}

func TestRun_DefaultThresholdAllocation(t *testing.T) {
	dir := writeCorpus(t, "en", map[string]string{
		"large.txt": strings.Repeat("x", 3_000_000),
		"small.txt": strings.Repeat("y", 500_000),
	})
	p := newTestPipeline(t, &Config{Parallelism: 4})

	result, err := p.Run(context.Background(), Request{Language: "en", TextDir: dir})
	require.NoError(t, err)

	// large.txt: 3,000,000 -> 1,500,000 after one split, then all small.
	require.Len(t, result.Plan, 2)
	assert.Equal(t, 2, result.Plan[0].ChunkCount)
	assert.Equal(t, 1, result.Plan[1].ChunkCount)

	require.Len(t, result.Units, 3)
	assert.Len(t, result.Units[0], 1_500_001)
	assert.Len(t, result.Units[1], 1_499_999)
	assert.Len(t, result.Units[2], 500_000)
}

func TestRun_NoFiles(t *testing.T) {
	dir := writeCorpus(t, "en", map[string]string{"notes.md": "not a text file"})
	p := newTestPipeline(t, nil)

	tests := []Request{
		{Language: "en", TextDir: dir},
		{Language: "fr", TextDir: dir},
		{Language: "en", TextDir: filepath.Join(dir, "missing")},
	}
	for _, req := range tests {
		t.Run(req.Pattern(), func(t *testing.T) {
			result, err := p.Run(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrNoFilesFound)
			assert.Nil(t, result)

			plan, err := p.Plan(context.Background(), req)
			assert.ErrorIs(t, err, types.ErrNoFilesFound)
			assert.Nil(t, plan)
		})
	}
}

func TestProcess_EmptyPlan(t *testing.T) {
	p := newTestPipeline(t, nil)

	units, stats, err := p.Process(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrNoFilesFound)
	assert.Nil(t, units)
	assert.Nil(t, stats)
}

func TestProcess_InvalidPlan(t *testing.T) {
	p := newTestPipeline(t, nil)

	_, _, err := p.Process(context.Background(), types.Plan{{Path: "a.txt", ChunkCount: 0}})
	assert.ErrorIs(t, err, types.ErrInvalidChunkCount)
}

func TestProcess_ReadFailureFailsFast(t *testing.T) {
	p := newTestPipeline(t, &Config{Workers: 4})
	p.readFile = func(path string) ([]byte, error) {
		if path == "broken.txt" {
			return nil, fs.ErrPermission
		}
		return []byte("fine"), nil
	}

	plan := types.Plan{
		{Path: "ok-1.txt", ChunkCount: 1},
		{Path: "broken.txt", ChunkCount: 2},
		{Path: "ok-2.txt", ChunkCount: 1},
	}
	units, stats, err := p.Process(context.Background(), plan)
	require.Error(t, err)
	assert.Nil(t, units)
	assert.Nil(t, stats)

	var readErr *types.FileReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, "broken.txt", readErr.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestProcess_ReadsEachFileOnce(t *testing.T) {
	p := newTestPipeline(t, &Config{Workers: 3})

	var mu sync.Mutex
	reads := make(map[string]int)
	p.readFile = func(path string) ([]byte, error) {
		mu.Lock()
		reads[path]++
		mu.Unlock()
		return []byte(strings.Repeat(path, 10)), nil
	}

	plan := types.Plan{
		{Path: "a.txt", ChunkCount: 4},
		{Path: "b.txt", ChunkCount: 1},
		{Path: "c.txt", ChunkCount: 7},
	}
	units, stats, err := p.Process(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, units, 12)
	assert.Equal(t, 12, stats.ChunksCreated)
	assert.Equal(t, map[string]int{"a.txt": 1, "b.txt": 1, "c.txt": 1}, reads)
}

func TestProcess_PreservesPlanOrder(t *testing.T) {
	p := newTestPipeline(t, &Config{Workers: 8})

	const files = 24
	p.readFile = func(path string) ([]byte, error) {
		var idx int
		_, _ = fmt.Sscanf(path, "f%02d.txt", &idx)
		// Later files finish first.
		time.Sleep(time.Duration(files-idx) * time.Millisecond)
		return []byte(fmt.Sprintf("f%02dabcdefgh", idx)), nil
	}

	plan := make(types.Plan, files)
	var want []string
	for i := range plan {
		plan[i] = types.PlanEntry{Path: fmt.Sprintf("f%02d.txt", i), ChunkCount: 2}
		text := fmt.Sprintf("f%02dabcdefgh", i) // 11 characters, width 6
		want = append(want, text[:6], text[6:])
	}

	units, _, err := p.Process(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, want, units)
}

func TestProcess_Canceled(t *testing.T) {
	p := newTestPipeline(t, &Config{Workers: 1})
	p.readFile = func(string) ([]byte, error) { return []byte("text"), nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Process(ctx, types.Plan{{Path: "a.txt", ChunkCount: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SplitCache(t *testing.T) {
	dir := writeCorpus(t, "de", map[string]string{
		"one.txt": "Größe und Maß",
		"two.txt": "Übermäßig",
	})
	p := newTestPipeline(t, &Config{CacheEntries: 8})
	req := Request{Language: "de", TextDir: dir}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Stats.CacheHits)
	assert.Equal(t, 2, p.CachedEntries())

	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Stats.CacheHits)
	assert.Equal(t, first.Units, second.Units)

	// Changed content misses the cache.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de", "two.txt"), []byte("Neu"), 0o644))
	third, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Stats.CacheHits)
	assert.Equal(t, []string{"groe und ma", "neu"}, third.Units)
}

func TestGlobResolver(t *testing.T) {
	dir := writeCorpus(t, "en", map[string]string{
		"b.txt":     "bb",
		"a.txt":     "a",
		"c.txt.bak": "ignored",
		"readme.md": "ignored",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en", "dir.txt"), 0o755))

	files, err := GlobResolver{}.Resolve(context.Background(), Request{Language: "en", TextDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []types.SourceFile{
		{Path: filepath.Join(dir, "en", "a.txt"), ByteSize: 1},
		{Path: filepath.Join(dir, "en", "b.txt"), ByteSize: 2},
	}, files)
}

func TestRunLock(t *testing.T) {
	var lock RunLock

	_, held := lock.Holder()
	assert.False(t, held)

	require.True(t, lock.TryAcquire(Request{Language: "en"}))
	assert.False(t, lock.TryAcquire(Request{Language: "fr"}))

	holder, held := lock.Holder()
	assert.True(t, held)
	assert.Equal(t, "en", holder.Language)

	lock.Release()
	assert.True(t, lock.TryAcquire(Request{Language: "fr"}))
	lock.Release()
}

func TestRunLock_Concurrent(t *testing.T) {
	var lock RunLock
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if lock.TryAcquire(Request{Language: "en"}) {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acquired)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Planner.Parallelism = 3
	cfg.Pipeline.Workers = 2

	p, err := FromConfig(&cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Parallelism())
	assert.Equal(t, 2, p.Workers())
}
