package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/corpus-chunker/internal/sanitize"
)

func lengths(pieces []string) []int {
	out := make([]int, len(pieces))
	for i, p := range pieces {
		out[i] = len([]rune(p))
	}
	return out
}

func TestNew(t *testing.T) {
	c := New(nil)
	require.NotNil(t, c)
	assert.Same(t, sanitize.Default(), c.Table())

	table := sanitize.NewTable()
	assert.Same(t, table, New(table).Table())
}

func TestSplit_SingleChunk(t *testing.T) {
	text := "the whole text, untouched"
	assert.Equal(t, []string{text}, Split(text, 1))
	assert.Equal(t, []string{""}, Split("", 1))
}

func TestSplit_Widths(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
		want  []int
	}{
		{"ten by three", "abcdefghij", 3, []int{4, 4, 2}},
		{"six by four leaves empty tail", "abcdef", 4, []int{2, 2, 2, 0}},
		{"even split still rounds up", "abcdefgh", 2, []int{5, 3}},
		{"more chunks than characters", "abc", 5, []int{1, 1, 1, 0, 0}},
		{"empty text", "", 3, []int{0, 0, 0}},
		{"multibyte characters", "àéîõüàéîõü", 3, []int{4, 4, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := Split(tt.text, tt.count)
			require.Len(t, pieces, tt.count)
			assert.Equal(t, tt.want, lengths(pieces))
			assert.Equal(t, tt.text, strings.Join(pieces, ""))
		})
	}
}

func TestSplit_Boundaries(t *testing.T) {
	pieces := Split("abcdefghij", 3)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, pieces)
}

func TestSplit_RoundTrip(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 997)
	for count := 1; count <= 64; count++ {
		pieces := Split(text, count)
		require.Len(t, pieces, count)
		assert.Equal(t, text, strings.Join(pieces, ""), "count %d", count)
	}
}

func TestChunkText(t *testing.T) {
	c := New(sanitize.NewTable())

	pieces := c.ChunkText("Café—NOW+5", 1)
	assert.Equal(t, []string{"cafe-now=5"}, pieces)

	// Sanitized first: "cafe-now=5" is ten characters.
	pieces = c.ChunkText("Café—NOW+5", 3)
	assert.Equal(t, []string{"cafe", "-now", "=5"}, pieces)
}

func BenchmarkSplit(b *testing.B) {
	text := strings.Repeat("abcdefghij", 500_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Split(text, 16)
	}
}

func BenchmarkChunkText(b *testing.B) {
	c := New(nil)
	text := strings.Repeat("Der Bär fährt über die Brücke. ", 50_000)

	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.ChunkText(text, 8)
	}
}
