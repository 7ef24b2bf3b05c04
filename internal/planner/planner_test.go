package planner

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/corpus-chunker/pkg/types"
)

func files(sizes ...int64) []types.SourceFile {
	out := make([]types.SourceFile, len(sizes))
	for i, size := range sizes {
		out[i] = types.SourceFile{Path: fmt.Sprintf("corpus/en/%02d.txt", i), ByteSize: size}
	}
	return out
}

func counts(plan types.Plan) []int {
	out := make([]int, len(plan))
	for i, e := range plan {
		out[i] = e.ChunkCount
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	p := New(Options{}, nil)
	assert.Equal(t, runtime.NumCPU(), p.Parallelism())
	assert.Equal(t, float64(DefaultMaxUnitBytes), p.maxUnitBytes)

	p = New(Options{Parallelism: -3}, nil)
	assert.Equal(t, 1, p.Parallelism())
}

func TestPlan_NoFiles(t *testing.T) {
	p := New(Options{Parallelism: 4}, nil)

	plan, err := p.Plan(nil)
	assert.ErrorIs(t, err, types.ErrNoFilesFound)
	assert.Nil(t, plan)

	_, err = p.Plan([]types.SourceFile{})
	assert.ErrorIs(t, err, types.ErrNoFilesFound)
}

func TestPlan_Allocation(t *testing.T) {
	tests := []struct {
		name        string
		sizes       []int64
		parallelism int
		want        []int
	}{
		{"small and large file", []int64{500_000, 3_000_000}, 4, []int{1, 2}},
		{"single small file", []int64{1_000}, 8, []int{1}},
		{"single large file", []int64{10_000_000}, 8, []int{5}},
		{"zero byte files", []int64{0, 0}, 4, []int{1, 1}},
		{"equal large files", []int64{6_000_000, 6_000_000}, 4, []int{3, 3}},
		{"saturation stops at budget", []int64{100_000_000}, 16, []int{16}},
		{"budget of one never splits", []int64{100_000_000}, 1, []int{1}},
		{"three files with tie", []int64{7_000_000, 7_000_000, 1}, 16, []int{4, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{Parallelism: tt.parallelism}, nil)
			plan, err := p.Plan(files(tt.sizes...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, counts(plan))
		})
	}
}

func TestPlan_SaturationHaltsAllFiles(t *testing.T) {
	p := New(Options{Parallelism: 2}, nil)

	// The first file reaches two chunks; the second still holds 5 MB
	// per chunk but is not split because the budget is reached.
	plan, err := p.Plan(files(20_000_000, 5_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, counts(plan))

	p = New(Options{Parallelism: 3}, nil)
	plan, err = p.Plan(files(10_000_000, 9_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, counts(plan))
	// 9 MB over two chunks is still above the target.
	assert.Greater(t, float64(plan[1].ByteSize)/float64(plan[1].ChunkCount), float64(DefaultMaxUnitBytes))
}

func TestPlan_TiesGoToEarliestFile(t *testing.T) {
	p := New(Options{Parallelism: 3}, nil)

	// Both files tie at 6 MB and again at 3 MB; the first file wins each
	// tie and reaches the budget, which stops the second at two chunks.
	input := files(6_000_000, 6_000_000)
	plan, err := p.Plan(input)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, counts(plan))
	assert.Equal(t, input[0].Path, plan[0].Path)
	assert.Equal(t, input[1].Path, plan[1].Path)

	// A larger later file is still reported in input order.
	plan, err = p.Plan(files(1_000, 6_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, counts(plan))
	assert.Equal(t, "corpus/en/00.txt", plan[0].Path)
}

func TestPlan_IncrementalEstimateDrift(t *testing.T) {
	p := New(Options{Parallelism: 64}, nil)

	// 16 MB / 8 is exactly 2 MB, but the incremental estimate lands at
	// 2000000.0000000002 after eight chunks, so a ninth is added.
	plan, err := p.Plan(files(16_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{9}, counts(plan))

	plan, err = p.Plan(files(32_000_000))
	require.NoError(t, err)
	assert.Equal(t, []int{17}, counts(plan))
}

func TestPlan_CustomThreshold(t *testing.T) {
	p := New(Options{Parallelism: 32, MaxUnitBytes: 1_000}, nil)

	plan, err := p.Plan(files(4_000))
	require.NoError(t, err)
	assert.Equal(t, []int{4}, counts(plan))
}

func TestPlan_Invariants(t *testing.T) {
	sizes := make([]int64, 0, 50)
	for i := 0; i < 50; i++ {
		sizes = append(sizes, int64(i)*731_003)
	}
	input := files(sizes...)

	for _, parallelism := range []int{1, 2, 4, 16, 128} {
		t.Run(fmt.Sprintf("P=%d", parallelism), func(t *testing.T) {
			p := New(Options{Parallelism: parallelism}, nil)
			plan, err := p.Plan(input)
			require.NoError(t, err)

			require.Len(t, plan, len(input))
			require.NoError(t, plan.Validate())
			for i, e := range plan {
				assert.Equal(t, input[i].Path, e.Path, "plan preserves input order")
				assert.Equal(t, input[i].ByteSize, e.ByteSize)
				assert.GreaterOrEqual(t, e.ChunkCount, 1)
				assert.LessOrEqual(t, e.ChunkCount, parallelism)
			}
		})
	}
}

func TestPlan_DoesNotMutateInput(t *testing.T) {
	input := files(3_000_000, 9_000_000)
	snapshot := append([]types.SourceFile(nil), input...)

	_, err := New(Options{Parallelism: 8}, nil).Plan(input)
	require.NoError(t, err)
	assert.Equal(t, snapshot, input)
}

func BenchmarkPlan_ManyFiles(b *testing.B) {
	sizes := make([]int64, 500)
	for i := range sizes {
		sizes[i] = int64(i+1) * 97_001
	}
	input := files(sizes...)
	p := New(Options{Parallelism: 64}, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Plan(input); err != nil {
			b.Fatal(err)
		}
	}
}
