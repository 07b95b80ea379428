package ir

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DisplayWidth returns the terminal column width of s, treating s as a single line (callers that
// need per-line width for multi-line content such as KDocContent should split first). Grapheme
// clusters and East Asian wide runes are measured with uniseg rather than a naive
// utf8.RuneCountInString, which undercounts both.
func DisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// LongestLineWidth returns the display width of the widest '\n'-separated line in s, used for
// KDocContent whose width is defined as the width of its longest line.
func LongestLineWidth(s string) int {
	max := 0
	for _, line := range strings.Split(s, "\n") {
		if w := DisplayWidth(line); w > max {
			max = w
		}
	}
	return max
}
