package ast_test

import (
	"testing"

	"github.com/teleivo/assertive/assert"

	"github.com/bracefmt/bracefmt/ast"
)

func TestLeaf(t *testing.T) {
	l := ast.NewLeaf(ast.KindIdentifier, "x")

	assert.Equals(t, l.Kind(), ast.KindIdentifier, "leaf kind")
	assert.Equals(t, l.Text(), "x", "leaf text")
	assert.Equals(t, len(l.Children()), 0, "a leaf has no children")
}

func TestTreeAppend(t *testing.T) {
	tr := ast.NewTree(ast.KindBlock, ast.NewLeaf(ast.KindPunctuation, "{"))
	tr.Append(ast.NewLeaf(ast.KindPunctuation, "}"))

	assert.Equals(t, tr.Kind(), ast.KindBlock, "tree kind")
	assert.Equals(t, tr.Text(), "", "an interior node has no literal text")
	assert.Equals(t, len(tr.Children()), 2, "children accumulate across Append calls")
}

func TestTerminalIsDistinctFromEveryRealKind(t *testing.T) {
	assert.Equals(t, ast.Terminal.Kind(), ast.KindTerminal, "terminal kind")
	assert.Equals(t, ast.Terminal.Text(), "", "terminal has no text")
	assert.Equals(t, len(ast.Terminal.Children()), 0, "terminal has no children")
}

func TestKindStringForKnownAndUnknownKind(t *testing.T) {
	assert.Equals(t, ast.KindClassDeclaration.String(), "ClassDeclaration", "known kind name")
	assert.Equals(t, ast.Kind(9999).String(), "Unknown", "an unregistered kind value stringifies to Unknown")
}
