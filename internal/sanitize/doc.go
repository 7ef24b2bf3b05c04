// Package sanitize folds arbitrary Unicode text into the restricted ASCII
// alphabet consumed by corpus analysis.
//
// A Table maps every code point to exactly one of three outcomes: folded to
// a replacement (uppercase to lowercase, accented Latin letters to their base
// letter, smart quotes to a straight quote), kept unchanged, or deleted.
// Anything not explicitly recognized is deleted, so sanitizing never fails.
//
//	t := sanitize.Default()
//	clean := t.Sanitize("Café—NOW+5") // "cafe-now=5"
//
// Default returns a process-wide table built on first use. Tables are
// immutable and safe for concurrent use.
//
// For streaming input, Transformer exposes the same mapping as a
// golang.org/x/text/transform.Transformer:
//
//	r := transform.NewReader(file, t.Transformer())
package sanitize
