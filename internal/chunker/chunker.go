package chunker

import (
	"unicode/utf8"

	"github.com/dshills/corpus-chunker/internal/sanitize"
)

// Chunker sanitizes file text and splits it into a fixed number of pieces
type Chunker struct {
	table *sanitize.Table
}

// New creates a Chunker using table, or the process-wide table when nil
func New(table *sanitize.Table) *Chunker {
	if table == nil {
		table = sanitize.Default()
	}
	return &Chunker{table: table}
}

// Table returns the translation table used for sanitizing
func (c *Chunker) Table() *sanitize.Table {
	return c.table
}

// ChunkText sanitizes text and splits the result into chunkCount pieces
func (c *Chunker) ChunkText(text string, chunkCount int) []string {
	return Split(c.table.Sanitize(text), chunkCount)
}

// Split divides text into exactly chunkCount contiguous pieces.
//
// A count of one (or less) returns the text unchanged as the only piece.
// Otherwise every piece is W/chunkCount+1 characters wide, where W is the
// character count, so the last pieces may be short or empty. Concatenating
// the pieces always yields text.
func Split(text string, chunkCount int) []string {
	if chunkCount <= 1 {
		return []string{text}
	}

	width := utf8.RuneCountInString(text)
	unit := width/chunkCount + 1
	pieces := make([]string, chunkCount)

	// Byte and character offsets coincide for ASCII, which is all sanitized
	// text contains.
	if width == len(text) {
		for i := range pieces {
			pieces[i] = text[clamp(i*unit, width):clamp((i+1)*unit, width)]
		}
		return pieces
	}

	offsets := runeOffsets(text, width)
	for i := range pieces {
		start := offsets[clamp(i*unit, width)]
		end := offsets[clamp((i+1)*unit, width)]
		pieces[i] = text[start:end]
	}
	return pieces
}

// runeOffsets returns the byte offset of every character plus len(text)
func runeOffsets(text string, width int) []int {
	offsets := make([]int, 0, width+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

func clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}
