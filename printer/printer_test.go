package printer

import (
	"testing"

	"github.com/teleivo/assertive/assert"

	"github.com/bracefmt/bracefmt/ir"
)

func defaultOptions() Options {
	return Options{MaxLineLength: 20, StandardIndent: 4, ContinuationIndent: 8}
}

func TestPrintFlatBlock(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.Code, Length: 9},
		ir.Leaf{Text: "val"},
		ir.Whitespace{Content: " ", Length: 2},
		ir.Leaf{Text: "x"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "val x\n", "flat block")
}

func TestPrintForcedBreak(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.Code, Length: 9},
		ir.Leaf{Text: "a"},
		ir.ForcedBreak{Count: 1},
		ir.Leaf{Text: "b"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "a\n    b\n", "forced break indents by the block's structural increment")
}

func TestPrintSynchronizedBreakStaysInlineWhenFlat(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.Code, Length: 10},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.Leaf{Text: "a"},
		ir.Leaf{Text: ","},
		ir.SynchronizedBreak{WhitespaceLength: 1},
		ir.Leaf{Text: "b"},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "(a, b)\n", "flat synchronized group")
}

func TestPrintSynchronizedBreakFiresWhenBlockOverflows(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.Code, Length: 40},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.Leaf{Text: "aVeryLongParameterName"},
		ir.Leaf{Text: ","},
		ir.SynchronizedBreak{WhitespaceLength: 1},
		ir.Leaf{Text: "another"},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	want := "(\n" +
		"    aVeryLongParameterName,\n" +
		"    another\n" +
		")\n"
	assert.Equals(t, got, want, "broken synchronized group")
}

func TestPrintPackageImportNeverBreaks(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.PackageImport, Length: 60},
		ir.Leaf{Text: "package"},
		ir.Whitespace{Content: " ", Length: 52},
		ir.Leaf{Text: "com.example.a.very.long.package.path.that.overflows"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "package com.example.a.very.long.package.path.that.overflows\n", "package directive never wraps")
}

func TestPrintStringLiteralSplicesQuotesOnlyWhenBreakFires(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.StringLiteral, Length: 13},
		ir.Leaf{Text: `"`},
		ir.Leaf{Text: "hello"},
		ir.Whitespace{Content: " ", Length: 6},
		ir.Leaf{Text: "world"},
		ir.Leaf{Text: `"`},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, `"hello world"`+"\n", "short literal stays unbroken")
}

func TestPrintStringLiteralWrapsWithQuoteSplice(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.StringLiteral, Length: 40},
		ir.Leaf{Text: `"`},
		ir.Leaf{Text: "aVeryLongFirstWord"},
		ir.Whitespace{Content: " ", Length: 20},
		ir.Leaf{Text: "aVeryLongSecondWord"},
		ir.Leaf{Text: `"`},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	want := `"aVeryLongFirstWord" +` + "\n" +
		`        "aVeryLongSecondWord"` + "\n"
	assert.Equals(t, got, want, "wrapped literal splices quotes and +")
}

func TestPrintKDocContent(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.KDoc, Length: 6},
		ir.KDocContent{Text: "hello"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "/** hello */\n", "kdoc content delegates to kdoc.Format")
}

func TestPrintKDocWrapWidthAccountsForCommentPrefix(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.KDoc, Length: 30},
		ir.KDocContent{Text: "aaaaaaaaaa bbbbbbbb"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	want := "/**\n * aaaaaaaaaa\n * bbbbbbbb\n */\n"
	assert.Equals(t, got, want, "wrap width must leave room for the 3-column ' * ' prefix")
}

func TestPrintLineCommentPreservesContentVerbatim(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.LineComment, Length: 9},
		ir.KDocContent{Text: "a comment"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "// a comment\n", "line comment keeps its text verbatim, not KDoc-formatted")
}

func TestPrintBlockCommentSingleLine(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.BlockComment, Length: 3},
		ir.KDocContent{Text: "foo"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "/* foo */\n", "single-line block comment collapses, not KDoc-formatted")
}

func TestPrintBlockCommentMultilinePreservesContent(t *testing.T) {
	tokens := []ir.Token{
		ir.Begin{State: ir.BlockComment, Length: 10},
		ir.KDocContent{Text: "first\nsecond"},
		ir.End{},
	}

	got := New(defaultOptions()).Print(tokens)

	assert.Equals(t, got, "/*\n * first\n * second\n */\n", "multi-line block comment keeps verbatim lines with a '* ' prefix")
}
