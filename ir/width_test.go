package ir

import (
	"testing"

	"github.com/teleivo/assertive/assert"
)

func TestDisplayWidth(t *testing.T) {
	tests := map[string]struct {
		in   string
		want int
	}{
		"empty":       {"", 0},
		"ascii":       {"hello", 5},
		"ascii space": {"a b", 3},
		"emoji":       {"👍", 2},
		"combining":   {"é", 1}, // e + combining acute accent renders as one column
		"cjk":         {"漢字", 4},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equals(t, DisplayWidth(tt.in), tt.want, "DisplayWidth(%q)", tt.in)
		})
	}
}

func TestLongestLineWidth(t *testing.T) {
	tests := map[string]struct {
		in   string
		want int
	}{
		"empty":           {"", 0},
		"single line":     {"hello", 5},
		"multiple lines":  {"short\na much longer line\nmid", 18},
		"trailing blank":  {"hello\n", 5},
		"all blank lines": {"\n\n", 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equals(t, LongestLineWidth(tt.in), tt.want, "LongestLineWidth(%q)", tt.in)
		})
	}
}
