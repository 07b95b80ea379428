package scanner

import (
	"strings"

	"github.com/bracefmt/bracefmt/ast"
	"github.com/bracefmt/bracefmt/ir"
	"github.com/bracefmt/bracefmt/matcher"
)

// leaf converts a leaf node directly to its literal token; used for keyword/punctuation/identifier
// children whose text is emitted verbatim.
func leaf(n ast.Node) ir.Token {
	return ir.Leaf{Text: n.Text()}
}

func space() ir.Token { return ir.Whitespace{Content: " "} }

// scanChild dispatches a composite child node back through the registry, or emits it as a literal
// leaf/control token if it is one of the tree's leaf kinds. This is how a scanner hands off a
// nested construct (an argument's expression, a block's statement) without needing to know its
// internal shape.
func scanChild(r *Registry, n ast.Node) []ir.Token {
	switch n.Kind() {
	case ast.KindKeyword, ast.KindPunctuation, ast.KindIdentifier, ast.KindDotIdentifier:
		return []ir.Token{leaf(n)}
	case ast.KindWhitespace:
		return []ir.Token{space()}
	case ast.KindNewline:
		return []ir.Token{ir.ForcedBreak{Count: clampNewlines(n.Text())}}
	case ast.KindKDoc:
		return commentTokens(ir.KDoc, n.Text())
	case ast.KindLineComment:
		return commentTokens(ir.LineComment, n.Text())
	case ast.KindBlockComment:
		return commentTokens(ir.BlockComment, n.Text())
	default:
		toks, err := r.Scan(n)
		if err != nil {
			return []ir.Token{leaf(n)}
		}
		return toks
	}
}

func clampNewlines(raw string) int {
	n := strings.Count(raw, "\n")
	if n > 2 {
		n = 2
	}
	if n < 1 {
		n = 1
	}
	return n
}

func commentTokens(state ir.State, text string) []ir.Token {
	return []ir.Token{
		ir.Begin{State: state},
		ir.KDocContent{Text: text},
		ir.End{},
	}
}

// realNodes drops the synthetic terminal node ThenMapToTokens's action appends to every accepted
// match, leaving only the nodes the pattern actually consumed from the tree.
func realNodes(nodes []ast.Node) []ast.Node {
	if len(nodes) > 0 && nodes[len(nodes)-1].Kind() == ast.KindTerminal {
		return nodes[:len(nodes)-1]
	}
	return nodes
}

// joinTrailer renders a suffix of already-matched nodes that follow some fixed required prefix a
// pattern has spelled out precisely (a name, a parameter list): a leading ": Type" or "= expr"
// pair gets canonical spacing around its punctuation, a trailing block gets one leading space, and
// anything else (such as a parameter list) recurses through scanChild with no separating space, so
// it hugs the token before it. This lets declaration
// scanners describe only the mandatory shape up front and leave the variable optional tail to one
// shared, predictable joiner instead of hand-indexing every combination.
func joinTrailer(r *Registry, nodes []ast.Node) []ir.Token {
	var toks []ir.Token
	i := 0
	for i < len(nodes) {
		n := nodes[i]
		switch {
		case n.Kind() == ast.KindPunctuation && n.Text() == ":":
			// no leading space, matching parameterPattern's "name: Type" spacing.
			toks = append(toks, leaf(n), space())
			i++
			if i < len(nodes) {
				toks = append(toks, scanChild(r, nodes[i])...)
				i++
			}
		case n.Kind() == ast.KindPunctuation && n.Text() == "=":
			toks = append(toks, space(), leaf(n), space())
			i++
			if i < len(nodes) {
				toks = append(toks, scanChild(r, nodes[i])...)
				i++
			}
		case n.Kind() == ast.KindBlock:
			toks = append(toks, space())
			toks = append(toks, scanChild(r, n)...)
			i++
		default:
			toks = append(toks, scanChild(r, n)...)
			i++
		}
	}
	return toks
}

// catchAll builds a pattern that accepts any sequence of children and hands each off to scanChild
// in order. It is used only where the sequence is genuinely heterogeneous top-level content (a
// file's declarations) separated by blank-line-preserving Newline nodes; blockPattern applies the
// same any-node loop to a block's statements between its braces, and every other construct gets a
// precise shape below so its spacing is deterministic.
func catchAll(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.ZeroOrMore(func(c *matcher.Builder) { c.AnyNode() }).
		End().
		ThenMapToTokens(func(nodes []ast.Node) []ir.Token {
			var toks []ir.Token
			for _, n := range realNodes(nodes) {
				toks = append(toks, scanChild(r, n)...)
			}
			return toks
		})
	return b.Build()
}

func filePattern(r *Registry) *matcher.Pattern {
	return catchAll(r)
}

func blockPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindPunctuation). // "{"
						ZeroOrMore(func(c *matcher.Builder) { c.AnyNode() }).
						NodeOfType(ast.KindPunctuation). // "}"
						End().
						ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{leaf(nodes[0]), ir.Begin{State: ir.Code}, ir.ForcedBreak{Count: 1}}
			for _, n := range nodes[1 : len(nodes)-1] {
				toks = append(toks, scanChild(r, n)...)
			}
			toks = append(toks, ir.ClosingForcedBreak{}, ir.End{}, leaf(nodes[len(nodes)-1]))
			return toks
		})
	return b.Build()
}

// classDeclarationPattern covers class/object/interface declarations: a keyword, a name, an
// optional primary-constructor parameter list (E2), and an optional body block.
func classDeclarationPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindKeyword).
		NodeOfType(ast.KindIdentifier).
		ZeroOrOne(func(c *matcher.Builder) { c.NodeOfType(ast.KindParameterList) }).
		ZeroOrOne(func(c *matcher.Builder) { c.NodeOfType(ast.KindBlock) }).
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{leaf(nodes[0]), space(), leaf(nodes[1])}
			toks = append(toks, joinTrailer(r, nodes[2:])...)
			return toks
		})
	return b.Build()
}

// functionDeclarationPattern: "fun" name "(" params ")" [": ReturnType"] ["=" expr | block].
func functionDeclarationPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindKeyword).
		NodeOfType(ast.KindIdentifier).
		NodeOfType(ast.KindParameterList).
		ZeroOrOne(func(c *matcher.Builder) { c.NodeOfType(ast.KindPunctuation).AnyNode() }).
		ZeroOrOne(func(c *matcher.Builder) { c.NodeOfType(ast.KindPunctuation).AnyNode() }).
		ZeroOrOneFrugal(func(c *matcher.Builder) { c.NodeOfType(ast.KindBlock) }).
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{leaf(nodes[0]), space(), leaf(nodes[1])}
			toks = append(toks, scanChild(r, nodes[2])...)
			toks = append(toks, joinTrailer(r, nodes[3:])...)
			return toks
		})
	return b.Build()
}

// propertyDeclarationPattern implements E1: "val"/"var" name "=" rhs, with a fill-break candidate
// right after "=" so an overflowing right-hand side wraps at continuation indent.
func propertyDeclarationPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindKeyword).
		NodeOfType(ast.KindIdentifier).
		NodeOfType(ast.KindPunctuation). // "="
		AnyNode().                        // rhs
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{
				leaf(nodes[0]), space(), leaf(nodes[1]), space(), leaf(nodes[2]), space(),
			}
			toks = append(toks, scanChild(r, nodes[3])...)
			return toks
		})
	return b.Build()
}

// parameterPattern: "name: Type", used both by function parameter lists and constructor
// parameter lists.
func parameterPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindIdentifier).
		NodeOfType(ast.KindPunctuation). // ":"
		AnyNode().                        // type
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{leaf(nodes[0]), leaf(nodes[1]), space()}
			toks = append(toks, scanChild(r, nodes[2])...)
			return toks
		})
	return b.Build()
}

func valueArgumentPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.AnyNode().End().ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
		nodes := realNodes(rawNodes)
		return scanChild(r, nodes[0])
	})
	return b.Build()
}

// parameterListPattern implements E2: "(" then each parameter separated by "," with a
// synchronized break, and a closing synchronized break before ")" so the whole group either stays
// flat or every parameter lands on its own line.
func parameterListPattern(r *Registry) *matcher.Pattern {
	return groupedListPattern(r, ast.KindParameter)
}

func valueArgumentListPattern(r *Registry) *matcher.Pattern {
	return groupedListPattern(r, ast.KindValueArgument)
}

func groupedListPattern(r *Registry, itemKind ast.Kind) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindPunctuation). // "("
						ZeroOrMore(func(c *matcher.Builder) { c.NodeOfType(itemKind) }).
						NodeOfType(ast.KindPunctuation). // ")"
						End().
						ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{ir.Begin{State: ir.Code}, leaf(nodes[0]), ir.SynchronizedBreak{}}
			items := nodes[1 : len(nodes)-1]
			for i, n := range items {
				if i > 0 {
					toks = append(toks, ir.Leaf{Text: ","}, ir.SynchronizedBreak{WhitespaceLength: 1})
				}
				toks = append(toks, scanChild(r, n)...)
			}
			toks = append(toks, ir.ClosingSynchronizedBreak{}, leaf(nodes[len(nodes)-1]), ir.End{})
			return toks
		})
	return b.Build()
}

// ifExpressionPattern implements E3: the condition may break internally (its own binary-expression
// tokens carry the synchronized breaks), but "if (" itself never breaks and the closing paren's
// break is tied to the same synchronized group as the condition's, so it fires exactly when the
// condition does.
func ifExpressionPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindKeyword). // if
					NodeOfType(ast.KindPunctuation). // (
					AnyNode().                        // condition
					NodeOfType(ast.KindPunctuation).  // )
					AnyNode().                        // then block
					ZeroOrOne(func(c *matcher.Builder) {
			c.NodeOfType(ast.KindKeyword).AnyNode() // else [if] / block
		}).
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			toks := []ir.Token{
				leaf(nodes[0]), space(), leaf(nodes[1]),
				ir.Begin{State: ir.Code},
			}
			toks = append(toks, scanChild(r, nodes[2])...)
			toks = append(toks, ir.ClosingSynchronizedBreak{}, ir.End{}, leaf(nodes[3]))
			toks = append(toks, space())
			toks = append(toks, scanChild(r, nodes[4])...)
			for _, n := range nodes[5:] {
				toks = append(toks, space())
				toks = append(toks, scanChild(r, n)...)
			}
			return toks
		})
	return b.Build()
}

// binaryExpressionPattern implements the &&/||/comparison chain used by E3 and E5: no Begin of its
// own, so a chain of nested binary expressions shares its synchronized-break group with whatever
// block encloses the whole chain (the if-condition's Begin, typically), making every operator in
// the chain break together.
func binaryExpressionPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.AnyNode(). // left
			NodeOfType(ast.KindPunctuation). // operator
			AnyNode().                        // right
			End().
			ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			var toks []ir.Token
			toks = append(toks, scanChild(r, nodes[0])...)
			toks = append(toks, ir.SynchronizedBreak{WhitespaceLength: 1})
			toks = append(toks, leaf(nodes[1]), space())
			toks = append(toks, scanChild(r, nodes[2])...)
			return toks
		})
	return b.Build()
}

// callExpressionPattern: a simple call is a callee plus a value-argument list; the argument list's
// own scanner owns its synchronized breaks.
func callExpressionPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.AnyNode(). // callee
			NodeOfType(ast.KindValueArgumentList).
			End().
			ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			var toks []ir.Token
			toks = append(toks, scanChild(r, nodes[0])...)
			toks = append(toks, scanChild(r, nodes[1])...)
			return toks
		})
	return b.Build()
}

// dotQualifiedExpressionPattern implements E4: the receiver, then a fill-break candidate (breaks
// independently of its siblings, only when what follows doesn't fit, indented as a statement
// continuation) before the "." or "?.", then the selector. Nested dot-qualified receivers recurse
// through the same scanner, so a long chain gets one independent break opportunity per segment.
func dotQualifiedExpressionPattern(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.AnyNode(). // receiver
			NodeOfType(ast.KindPunctuation). // "." or "?."
			AnyNode().                        // selector
			End().
			ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			var toks []ir.Token
			toks = append(toks, scanChild(r, nodes[0])...)
			toks = append(toks, ir.Whitespace{Content: ""})
			toks = append(toks, leaf(nodes[1]))
			toks = append(toks, scanChild(r, nodes[2])...)
			return toks
		})
	return b.Build()
}

// packageDirectivePattern and importDirectivePattern both implement E8: the whole directive is
// wrapped in a PackageImport block, which the printer never breaks regardless of length.
func packageDirectivePattern(_ *Registry) *matcher.Pattern {
	b := matcher.New()
	b.NodeOfType(ast.KindKeyword).
		NodeOfType(ast.KindDotIdentifier).
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			nodes := realNodes(rawNodes)
			return []ir.Token{
				ir.Begin{State: ir.PackageImport},
				leaf(nodes[0]), space(), leaf(nodes[1]),
				ir.End{},
			}
		})
	return b.Build()
}

func importDirectivePattern(r *Registry) *matcher.Pattern {
	return packageDirectivePattern(r)
}

// stringLiteralPattern implements E7: a string literal's children alternate literal-text leaves
// and string-template-entry nodes; a literal-text leaf with internal word boundaries gets its own
// fill-break candidates (word wrap), each reopening the surrounding quotes via a `" + "` splice
// exactly as plain statement-continuation wrapping does, since StringLiteral's structural indent
// increment is 0 and the break itself is a plain Whitespace (continuation-indent fill break,
// handled generically by the printer).
func stringLiteralPattern(r *Registry) *matcher.Pattern {
	return catchAllString(r)
}

func catchAllString(r *Registry) *matcher.Pattern {
	b := matcher.New()
	b.ZeroOrMore(func(c *matcher.Builder) { c.AnyNode() }).
		End().
		ThenMapToTokens(func(rawNodes []ast.Node) []ir.Token {
			toks := []ir.Token{ir.Begin{State: ir.StringLiteral}, ir.Leaf{Text: `"`}}
			for _, n := range realNodes(rawNodes) {
				if n.Kind() == ast.KindStringTemplateEntry {
					toks = append(toks, ir.Leaf{Text: "${"})
					toks = append(toks, scanChild(r, n.Children()[0])...)
					toks = append(toks, ir.Leaf{Text: "}"})
					continue
				}
				toks = append(toks, wordWrapLiteralText(n.Text())...)
			}
			toks = append(toks, ir.Leaf{Text: `"`}, ir.End{})
			return toks
		})
	return b.Build()
}

// wordWrapLiteralText splits raw literal text on spaces into a run of Leaf/Whitespace tokens. Each
// space becomes an ordinary fill-break candidate; the printer recognizes a firing Whitespace break
// inside a StringLiteral block and is responsible for splicing in the closing quote, `+`
// concatenation, and reopening quote (E7) -- the scanner only needs to mark where the literal may
// be split, not how the split renders.
func wordWrapLiteralText(text string) []ir.Token {
	words := strings.Split(text, " ")
	var toks []ir.Token
	for i, w := range words {
		if i > 0 {
			toks = append(toks, ir.Whitespace{Content: " "})
		}
		toks = append(toks, ir.Leaf{Text: w})
	}
	return toks
}
