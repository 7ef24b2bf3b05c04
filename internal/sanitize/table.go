package sanitize

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// sources lists every recognized character that is rewritten.
	sources = "\t\n \"+:<>?ABCDEFGHIJKLMNOPQRSTUVWXYZ\\_{|}~«´»" +
		"ÀÁÂÄÇÈÉÊËÌÍÎÏÐÑÒÓÔÖÙÚÛÜÝ" +
		"àáâäçèéêëìíîïðñòóôö÷øùúûüý" +
		"‘“”’–—ʹ͵"

	// targets holds the replacement for the source at the same position.
	targets = "   '=;,./abcdefghijklmnopqrstuvwxyz\\-[\\]`'''" +
		"aaaaceeeeiiiidnoooouuuuy" +
		"aaaaceeeeiiiidnoooo/ouuuuy" +
		"''''--''"

	// kept lists characters that pass through unchanged besides the targets.
	kept = "0123456789"
)

const deleted rune = -1

// Table maps code points to their sanitized form
type Table struct {
	ascii  [utf8.RuneSelf]rune
	folded map[rune]rune
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table, building it on first call
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
	})
	return defaultTable
}

// NewTable builds a table. Construction is deterministic: two tables built
// by NewTable map every code point identically.
func NewTable() *Table {
	src := []rune(sources)
	dst := []rune(targets)
	if len(src) != len(dst) {
		panic("sanitize: source and target lists differ in length")
	}

	t := &Table{folded: make(map[rune]rune)}
	for i := range t.ascii {
		t.ascii[i] = deleted
	}

	// Targets and digits map to themselves unless they are also a source.
	for _, r := range targets + kept {
		t.set(r, r)
	}
	for i, r := range src {
		t.set(r, dst[i])
	}
	return t
}

func (t *Table) set(from, to rune) {
	if from < utf8.RuneSelf {
		t.ascii[from] = to
		return
	}
	t.folded[from] = to
}

// Lookup returns the replacement for r, or false if r is deleted
func (t *Table) Lookup(r rune) (rune, bool) {
	if r >= 0 && r < utf8.RuneSelf {
		to := t.ascii[r]
		return to, to != deleted
	}
	to, ok := t.folded[r]
	return to, ok
}

// Sanitize rewrites text through the table. Invalid UTF-8 is deleted.
func (t *Table) Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if to, ok := t.Lookup(r); ok {
			b.WriteRune(to)
		}
	}
	return b.String()
}

// Transformer returns a fresh streaming transformer applying the table
func (t *Table) Transformer() transform.Transformer {
	drop := runes.Remove(runes.Predicate(func(r rune) bool {
		_, ok := t.Lookup(r)
		return !ok
	}))
	fold := runes.Map(func(r rune) rune {
		to, _ := t.Lookup(r)
		return to
	})
	return transform.Chain(drop, fold)
}

// Len reports how many code points survive sanitization
func (t *Table) Len() int {
	n := len(t.folded)
	for _, to := range t.ascii {
		if to != deleted {
			n++
		}
	}
	return n
}
