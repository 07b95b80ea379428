package preprocess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/teleivo/assertive/assert"

	"github.com/bracefmt/bracefmt/ir"
)

func TestRun(t *testing.T) {
	tests := map[string]struct {
		in   []ir.Token
		want []ir.Token
	}{
		"flat leaves get a Begin length covering the whole flat width": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "val"},
				ir.Whitespace{Content: " "},
				ir.Leaf{Text: "x"},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 5},
				ir.Leaf{Text: "val"},
				ir.Whitespace{Content: " ", Length: 2},
				ir.Leaf{Text: "x"},
				ir.End{},
			},
		},
		"a forced break at depth 0 promotes sibling synchronized breaks to forced": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "a"},
				ir.SynchronizedBreak{WhitespaceLength: 1},
				ir.Leaf{Text: "b"},
				ir.ForcedBreak{Count: 1},
				ir.Leaf{Text: "c"},
				ir.ClosingSynchronizedBreak{},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 3},
				ir.Leaf{Text: "a"},
				ir.ForcedBreak{Count: 1},
				ir.Leaf{Text: "b"},
				ir.ForcedBreak{Count: 1},
				ir.Leaf{Text: "c"},
				ir.ClosingForcedBreak{},
				ir.End{},
			},
		},
		"a synchronized break immediately after a forced break is dropped": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "a"},
				ir.ForcedBreak{Count: 1},
				ir.SynchronizedBreak{WhitespaceLength: 1},
				ir.Leaf{Text: "b"},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 2},
				ir.Leaf{Text: "a"},
				ir.ForcedBreak{Count: 1},
				ir.Leaf{Text: "b"},
				ir.End{},
			},
		},
		"consecutive whitespace tokens dedup to one": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "a"},
				ir.Whitespace{Content: ""},
				ir.Whitespace{Content: " "},
				ir.Leaf{Text: "b"},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 3},
				ir.Leaf{Text: "a"},
				ir.Whitespace{Content: " ", Length: 2},
				ir.Leaf{Text: "b"},
				ir.End{},
			},
		},
		"a whitespace run with a newline before a comment Begin becomes a forced break": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "a"},
				ir.Whitespace{Content: "\n\n\n"},
				ir.Begin{State: ir.LineComment},
				ir.Leaf{Text: "// hi"},
				ir.End{},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 6},
				ir.Leaf{Text: "a"},
				ir.ForcedBreak{Count: 2},
				ir.Begin{State: ir.LineComment, Length: 5},
				ir.Leaf{Text: "// hi"},
				ir.End{},
				ir.End{},
			},
		},
		"nested block length does not leak into the parent's depth-0 width": {
			in: []ir.Token{
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "f"},
				ir.Begin{State: ir.Code},
				ir.Leaf{Text: "(x)"},
				ir.End{},
				ir.End{},
			},
			want: []ir.Token{
				ir.Begin{State: ir.Code, Length: 4},
				ir.Leaf{Text: "f"},
				ir.Begin{State: ir.Code, Length: 3},
				ir.Leaf{Text: "(x)"},
				ir.End{},
				ir.End{},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Run(tt.in)
			assert.Truef(t, cmp.Equal(got, tt.want), "Run(%v) mismatch (-got +want):\n%s", tt.in, cmp.Diff(got, tt.want))
		})
	}
}
