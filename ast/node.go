package ast

// Node is an opaque handle into the syntax tree supplied by a TreeProvider. Leaves carry literal
// [Node.Text]; interior nodes carry ordered [Node.Children].
type Node interface {
	Kind() Kind
	Text() string
	Children() []Node
}

// Leaf is a Node with no children, carrying literal source text (an identifier, a keyword, a piece
// of punctuation, a run of whitespace).
type Leaf struct {
	kind Kind
	text string
}

// NewLeaf builds a leaf node of the given kind with the given literal text.
func NewLeaf(kind Kind, text string) Leaf {
	return Leaf{kind: kind, text: text}
}

func (l Leaf) Kind() Kind       { return l.kind }
func (l Leaf) Text() string     { return l.text }
func (l Leaf) Children() []Node { return nil }

// Tree is an interior Node: an ordered sequence of children, no literal text of its own.
type Tree struct {
	kind     Kind
	children []Node
}

// NewTree builds an interior node of the given kind wrapping the given children in order.
func NewTree(kind Kind, children ...Node) *Tree {
	return &Tree{kind: kind, children: children}
}

func (t *Tree) Kind() Kind       { return t.kind }
func (t *Tree) Text() string     { return "" }
func (t *Tree) Children() []Node { return t.children }

// Append adds children to the tree in order, returning the tree for chaining.
func (t *Tree) Append(children ...Node) *Tree {
	t.children = append(t.children, children...)
	return t
}

// terminal is the single synthetic sentinel node the matcher consumes once, after the real input
// sequence is exhausted, to allow patterns ending in [matcher.Builder.End] to accept.
type terminal struct{}

func (terminal) Kind() Kind       { return KindTerminal }
func (terminal) Text() string     { return "" }
func (terminal) Children() []Node { return nil }

// Terminal is the distinguished end-of-sequence node. Patterns built with matcher.Builder.End
// require this node to accept.
var Terminal Node = terminal{}
