// Package matcher implements the nondeterministic node-pattern matcher used by [scanner] rules: a
// builder-defined NFA that consumes a sequence of child [ast.Node]s and, on acceptance, folds the
// matched sub-sequences into [ir.Token]s.
//
// The simulation follows the four-step algorithm of an NFA over a node stream: epsilon-closure,
// attach the current node to every live path, consume it against each path's predicates, and repeat;
// after the real input is exhausted, one more epsilon-closure and a consume against the synthetic
// [ast.Terminal] node decides acceptance. Builder-provided ordering of alternatives is the tie
// break: the first final path found wins.
package matcher

import (
	"fmt"

	"github.com/bracefmt/bracefmt/ast"
	"github.com/bracefmt/bracefmt/ir"
	"github.com/bracefmt/bracefmt/internal/assert"
)

// Evaluation carries the nodes matched since the last token-producing action and the tokens
// produced so far along an NFA path.
type Evaluation struct {
	Nodes  []ast.Node
	Tokens []ir.Token
}

// Predicate decides whether a state's consuming edge accepts a given node.
type Predicate func(ast.Node) bool

// Action folds an evaluation forward when a path consumes the node that reaches the state the
// action is attached to.
type Action func(Evaluation, ast.Node) Evaluation

// NoMatchError reports that a scanner's pattern failed to match a subtree. Per the target
// language's well-formedness, this indicates an internal error (a scanner pattern out of sync
// with the tree shape it claims to handle), never malformed user input.
type NoMatchError struct {
	Nodes []ast.Node
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("pattern did not match sequence of %d node(s)", len(e.Nodes))
}

type edge struct {
	predicate Predicate
	target    int
}

// nfaState is one arena-allocated state of the NFA. Using an index-indirected arena (rather than
// states holding pointers to each other) avoids cyclic ownership when a fragment loops back on
// itself, as zeroOrMore does.
type nfaState struct {
	eps    []int // immediateNextStates: epsilon transitions, in priority order
	edges  []edge
	accept bool // true for states installed by Builder.End
	action Action
}

// Pattern is a compiled NFA ready to match sequences of nodes.
type Pattern struct {
	states []*nfaState
	start  int
}

// Match runs the NFA over nodes starting from the pattern's initial state. On acceptance it
// returns the tokens produced by the accepting path's actions, run in order over the matched
// sub-sequences. On failure it returns [NoMatchError] bearing the full input node list.
func (p *Pattern) Match(nodes []ast.Node) ([]ir.Token, error) {
	type frontierItem struct {
		state int
		path  *pathStep
	}

	closure := func(items []frontierItem) []frontierItem {
		seen := make(map[int]bool, len(items)*2)
		var out []frontierItem
		var visit func(it frontierItem)
		visit = func(it frontierItem) {
			if seen[it.state] {
				return
			}
			seen[it.state] = true
			out = append(out, it)
			for _, next := range p.states[it.state].eps {
				visit(frontierItem{state: next, path: it.path})
			}
		}
		for _, it := range items {
			visit(it)
		}
		return out
	}

	consume := func(items []frontierItem, node ast.Node) []frontierItem {
		var out []frontierItem
		for _, it := range items {
			st := p.states[it.state]
			for _, e := range st.edges {
				if e.predicate(node) {
					out = append(out, frontierItem{
						state: e.target,
						path:  &pathStep{prev: it.path, node: node, state: p.states[e.target]},
					})
				}
			}
		}
		return out
	}

	frontier := closure([]frontierItem{{state: p.start, path: nil}})
	for _, node := range nodes {
		frontier = consume(frontier, node)
		if len(frontier) == 0 {
			return nil, &NoMatchError{Nodes: nodes}
		}
		frontier = closure(frontier)
	}

	final := consume(frontier, ast.Terminal)
	for _, it := range final {
		if p.states[it.state].accept {
			return it.path.runActions().Tokens, nil
		}
	}
	return nil, &NoMatchError{Nodes: nodes}
}

// pathStep is one branch of the NFA frontier: a continuation referencing its predecessor plus the
// node it consumed to get here. Only the winning path's actions are ever run, lazily, bottom-up
// over this linked spine -- rejected branches never materialize tokens.
type pathStep struct {
	prev  *pathStep
	node  ast.Node
	state *nfaState
}

func (ps *pathStep) runActions() Evaluation {
	if ps == nil {
		return Evaluation{}
	}
	eval := ps.prev.runActions()
	assert.That(ps.state != nil, "pathStep missing its NFA state")
	if ps.state.action != nil {
		return ps.state.action(eval, ps.node)
	}
	eval.Nodes = append(eval.Nodes, ps.node)
	return eval
}
