// Package banner produces the typed-out welcome line.
package banner

import (
	"iter"
	"time"
)

const (
	Text     = "Welcome to XENORA..."
	Interval = 100 * time.Millisecond
)

// Frames yields the prefixes of text of length 1 through n runes. The
// sequence is finite and may be ranged over again to restart it.
func Frames(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range text {
			if i == 0 {
				continue
			}
			if !yield(text[:i]) {
				return
			}
		}
		if text != "" {
			yield(text)
		}
	}
}
