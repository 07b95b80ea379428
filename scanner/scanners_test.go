package scanner

import (
	"testing"

	"github.com/teleivo/assertive/assert"

	"github.com/bracefmt/bracefmt/ast"
	"github.com/bracefmt/bracefmt/ir"
)

func TestPropertyDeclarationPattern(t *testing.T) {
	r := NewRegistry()
	node := ast.NewTree(ast.KindPropertyDeclaration,
		ast.NewLeaf(ast.KindKeyword, "val"),
		ast.NewLeaf(ast.KindIdentifier, "x"),
		ast.NewLeaf(ast.KindPunctuation, "="),
		ast.NewLeaf(ast.KindIdentifier, "1"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Leaf{Text: "val"}, ir.Whitespace{Content: " "},
		ir.Leaf{Text: "x"}, ir.Whitespace{Content: " "},
		ir.Leaf{Text: "="}, ir.Whitespace{Content: " "},
		ir.Leaf{Text: "1"},
	}, "val x = 1 token sequence")
}

func TestParameterListPatternWrapsSynchronizedBreaks(t *testing.T) {
	r := NewRegistry()
	param := func(name, typ string) ast.Node {
		return ast.NewTree(ast.KindParameter,
			ast.NewLeaf(ast.KindIdentifier, name),
			ast.NewLeaf(ast.KindPunctuation, ":"),
			ast.NewLeaf(ast.KindIdentifier, typ),
		)
	}
	node := ast.NewTree(ast.KindParameterList,
		ast.NewLeaf(ast.KindPunctuation, "("),
		param("a", "Int"),
		param("b", "String"),
		ast.NewLeaf(ast.KindPunctuation, ")"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Begin{State: ir.Code},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.Leaf{Text: "a"}, ir.Leaf{Text: ":"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "Int"},
		ir.Leaf{Text: ","}, ir.SynchronizedBreak{WhitespaceLength: 1},
		ir.Leaf{Text: "b"}, ir.Leaf{Text: ":"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "String"},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
	}, "parameter list with two parameters")
}

func TestValueArgumentPatternDelegatesToItsExpression(t *testing.T) {
	r := NewRegistry()
	node := ast.NewTree(ast.KindValueArgument, ast.NewLeaf(ast.KindIdentifier, "n"))

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{ir.Leaf{Text: "n"}}, "value argument unwraps to its expression")
}

func TestDotQualifiedExpressionPatternUsesFillBreak(t *testing.T) {
	r := NewRegistry()
	node := ast.NewTree(ast.KindDotQualifiedExpression,
		ast.NewLeaf(ast.KindIdentifier, "a"),
		ast.NewLeaf(ast.KindPunctuation, "."),
		ast.NewLeaf(ast.KindIdentifier, "b"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Leaf{Text: "a"},
		ir.Whitespace{Content: ""},
		ir.Leaf{Text: "."},
		ir.Leaf{Text: "b"},
	}, "dot chain segment")
}

func TestPackageDirectivePatternNeverBreaks(t *testing.T) {
	r := NewRegistry()
	node := ast.NewTree(ast.KindPackageDirective,
		ast.NewLeaf(ast.KindKeyword, "package"),
		ast.NewLeaf(ast.KindDotIdentifier, "com.example.app"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Begin{State: ir.PackageImport},
		ir.Leaf{Text: "package"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "com.example.app"},
		ir.End{},
	}, "package directive")
}

func TestStringLiteralPatternWordWrapsAndSplicesTemplateEntries(t *testing.T) {
	r := NewRegistry()
	node := ast.NewTree(ast.KindStringLiteral,
		ast.NewLeaf(ast.KindIdentifier, "hello "),
		ast.NewTree(ast.KindStringTemplateEntry, ast.NewLeaf(ast.KindIdentifier, "name")),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Begin{State: ir.StringLiteral},
		ir.Leaf{Text: `"`},
		ir.Leaf{Text: "hello"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: ""},
		ir.Leaf{Text: "${"}, ir.Leaf{Text: "name"}, ir.Leaf{Text: "}"},
		ir.Leaf{Text: `"`},
		ir.End{},
	}, "string literal with a trailing template entry")
}

func TestFunctionDeclarationPatternReturnTypeColonHasNoLeadingSpace(t *testing.T) {
	r := NewRegistry()
	params := ast.NewTree(ast.KindParameterList,
		ast.NewLeaf(ast.KindPunctuation, "("),
		ast.NewLeaf(ast.KindPunctuation, ")"),
	)
	node := ast.NewTree(ast.KindFunctionDeclaration,
		ast.NewLeaf(ast.KindKeyword, "fun"),
		ast.NewLeaf(ast.KindIdentifier, "f"),
		params,
		ast.NewLeaf(ast.KindPunctuation, ":"),
		ast.NewLeaf(ast.KindIdentifier, "Int"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Leaf{Text: "fun"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "f"},
		ir.Begin{State: ir.Code},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
		ir.Leaf{Text: ":"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "Int"},
	}, "fun f(): Int has no space before the return-type colon")
}

func TestFunctionDeclarationPatternExpressionBodyKeepsSpacedEquals(t *testing.T) {
	r := NewRegistry()
	params := ast.NewTree(ast.KindParameterList,
		ast.NewLeaf(ast.KindPunctuation, "("),
		ast.NewLeaf(ast.KindPunctuation, ")"),
	)
	node := ast.NewTree(ast.KindFunctionDeclaration,
		ast.NewLeaf(ast.KindKeyword, "fun"),
		ast.NewLeaf(ast.KindIdentifier, "f"),
		params,
		ast.NewLeaf(ast.KindPunctuation, "="),
		ast.NewLeaf(ast.KindIdentifier, "1"),
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Leaf{Text: "fun"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "f"},
		ir.Begin{State: ir.Code},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
		ir.Whitespace{Content: " "}, ir.Leaf{Text: "="}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "1"},
	}, "fun f() = 1 keeps spaces on both sides of the equals sign")
}

func TestClassDeclarationPatternWithParametersAndBody(t *testing.T) {
	r := NewRegistry()
	params := ast.NewTree(ast.KindParameterList,
		ast.NewLeaf(ast.KindPunctuation, "("),
		ast.NewLeaf(ast.KindPunctuation, ")"),
	)
	body := ast.NewTree(ast.KindBlock,
		ast.NewLeaf(ast.KindPunctuation, "{"),
		ast.NewLeaf(ast.KindPunctuation, "}"),
	)
	node := ast.NewTree(ast.KindClassDeclaration,
		ast.NewLeaf(ast.KindKeyword, "class"),
		ast.NewLeaf(ast.KindIdentifier, "Foo"),
		params,
		body,
	)

	got, err := r.Scan(node)

	assert.Nilf(t, err, "Scan returned unexpected error: %v", err)
	assert.EqualValues(t, got, []ir.Token{
		ir.Leaf{Text: "class"}, ir.Whitespace{Content: " "}, ir.Leaf{Text: "Foo"},
		ir.Begin{State: ir.Code},
		ir.Leaf{Text: "("},
		ir.SynchronizedBreak{},
		ir.ClosingSynchronizedBreak{},
		ir.Leaf{Text: ")"},
		ir.End{},
		ir.Whitespace{Content: " "},
		ir.Leaf{Text: "{"}, ir.Begin{State: ir.Code}, ir.ForcedBreak{Count: 1},
		ir.ClosingForcedBreak{}, ir.End{}, ir.Leaf{Text: "}"},
	}, "class Foo() {}")
}
