package matcher

import (
	"github.com/bracefmt/bracefmt/ast"
	"github.com/bracefmt/bracefmt/ir"
)

// endPoint is one of a fragment's dangling exits: a state whose epsilon list will receive the next
// fragment's start state once the builder knows what follows. prepend controls where in that
// state's epsilon list the new transition is inserted, which is how greedy vs frugal quantifiers
// are realized: greedy appends (try the existing, preferred continuation first), frugal prepends
// (try the new continuation -- usually "stop here" -- first).
type endPoint struct {
	state   int
	prepend bool
}

// fragment is an NFA fragment under construction: a start state and a set of dangling exits.
type fragment struct {
	start int
	ends  []endPoint
}

// Builder composes a [Pattern] by chaining method calls, each appending to a single running
// fragment. Quantifiers and alternation take a body closure that builds a sub-fragment from a
// fresh child Builder sharing the same state arena.
type Builder struct {
	states []*nfaState
	start  int
	ends   []endPoint
	empty  bool
}

// New starts an empty pattern builder.
func New() *Builder {
	b := &Builder{empty: true}
	s := b.newState()
	b.start = s
	b.ends = []endPoint{{state: s}}
	return b
}

func (b *Builder) newState() int {
	b.states = append(b.states, &nfaState{})
	return len(b.states) - 1
}

func (b *Builder) patch(ends []endPoint, target int) {
	for _, e := range ends {
		st := b.states[e.state]
		if e.prepend {
			st.eps = append([]int{target}, st.eps...)
		} else {
			st.eps = append(st.eps, target)
		}
	}
}

// then sequences a sub-fragment built from the given states (which must share b's arena) onto the
// builder's running fragment.
func (b *Builder) then(sub fragment) *Builder {
	b.patch(b.ends, sub.start)
	b.ends = sub.ends
	b.empty = false
	return b
}

// child runs body on a fresh Builder that shares this builder's arena, returning the resulting
// fragment without touching the parent's running state.
func (b *Builder) child(body func(*Builder)) fragment {
	c := &Builder{states: b.states, empty: true}
	s := c.newState()
	c.start = s
	c.ends = []endPoint{{state: s}}
	body(c)
	b.states = c.states
	return fragment{start: c.start, ends: c.ends}
}

func (b *Builder) consuming(pred Predicate) fragment {
	target := b.newState()
	for _, e := range b.ends {
		st := b.states[e.state]
		st.edges = append(st.edges, edge{predicate: pred, target: target})
	}
	return fragment{start: b.ends[0].state, ends: []endPoint{{state: target}}}
}

// NodeOfType accepts exactly one child node of the given kind.
func (b *Builder) NodeOfType(k ast.Kind) *Builder {
	f := b.consuming(func(n ast.Node) bool { return n.Kind() == k })
	b.ends = f.ends
	b.empty = false
	return b
}

// AnyNode accepts exactly one child node of any kind (the synthetic terminal node excluded; use
// End to require it).
func (b *Builder) AnyNode() *Builder {
	f := b.consuming(func(n ast.Node) bool { return n.Kind() != ast.KindTerminal })
	b.ends = f.ends
	b.empty = false
	return b
}

// PossibleWhitespace optionally matches a single whitespace child.
func (b *Builder) PossibleWhitespace() *Builder {
	return b.ZeroOrOne(func(c *Builder) { c.NodeOfType(ast.KindWhitespace) })
}

func (b *Builder) quantify(body func(*Builder), kind quantifierKind, frugal bool) *Builder {
	sub := b.child(body)
	var f fragment
	switch kind {
	case quantZeroOrOne:
		f = zeroOrOne(b, sub, frugal)
	case quantZeroOrMore:
		f = zeroOrMore(b, sub, frugal)
	case quantOneOrMore:
		// one mandatory occurrence, then zero or more further occurrences of a freshly built copy
		one := sub
		more := zeroOrMore(b, b.child(body), frugal)
		b.patch(one.ends, more.start)
		f = fragment{start: one.start, ends: more.ends}
	}
	return b.then(f)
}

type quantifierKind int

const (
	quantZeroOrOne quantifierKind = iota
	quantZeroOrMore
	quantOneOrMore
)

func zeroOrOne(b *Builder, sub fragment, frugal bool) fragment {
	s := b.newState()
	b.states[s].eps = []int{sub.start}
	ends := []endPoint{{state: s, prepend: frugal}}
	ends = append(ends, sub.ends...)
	return fragment{start: s, ends: ends}
}

func zeroOrMore(b *Builder, sub fragment, frugal bool) fragment {
	s := b.newState()
	b.states[s].eps = []int{sub.start}
	b.patch(sub.ends, s)
	return fragment{start: s, ends: []endPoint{{state: s, prepend: frugal}}}
}

// ZeroOrOne matches body zero or one time, preferring to match (greedy).
func (b *Builder) ZeroOrOne(body func(*Builder)) *Builder {
	return b.quantify(body, quantZeroOrOne, false)
}

// ZeroOrOneFrugal matches body zero or one time, preferring to skip it (frugal).
func (b *Builder) ZeroOrOneFrugal(body func(*Builder)) *Builder {
	return b.quantify(body, quantZeroOrOne, true)
}

// ZeroOrMore matches body zero or more times, preferring to keep matching (greedy).
func (b *Builder) ZeroOrMore(body func(*Builder)) *Builder {
	return b.quantify(body, quantZeroOrMore, false)
}

// ZeroOrMoreFrugal matches body zero or more times, preferring to stop as soon as possible.
func (b *Builder) ZeroOrMoreFrugal(body func(*Builder)) *Builder {
	return b.quantify(body, quantZeroOrMore, true)
}

// OneOrMore matches body one or more times, preferring to keep matching (greedy).
func (b *Builder) OneOrMore(body func(*Builder)) *Builder {
	return b.quantify(body, quantOneOrMore, false)
}

// OneOrMoreFrugal matches body one or more times, preferring to stop as soon as possible.
func (b *Builder) OneOrMoreFrugal(body func(*Builder)) *Builder {
	return b.quantify(body, quantOneOrMore, true)
}

// ExactlyOne matches body exactly once. It exists alongside plain chaining (which has the same
// effect) to let a pattern spell out cardinality explicitly where that documents intent.
func (b *Builder) ExactlyOne(body func(*Builder)) *Builder {
	return b.then(b.child(body))
}

// Either tries each alternative in order, the first listed having highest priority; the first one
// whose continuation leads to an accepting path wins.
func (b *Builder) Either(first func(*Builder), rest ...func(*Builder)) *Builder {
	bodies := append([]func(*Builder){first}, rest...)
	s := b.newState()
	var ends []endPoint
	for _, body := range bodies {
		sub := b.child(body)
		s2 := s
		b.states[s2].eps = append(b.states[s2].eps, sub.start)
		ends = append(ends, sub.ends...)
	}
	return b.then(fragment{start: s, ends: ends})
}

// End requires the synthetic terminal node to follow, i.e. requires the matched sub-sequence to
// reach the end of the input. A pattern is only usable with [Pattern.Match] once End has been
// called at least once along every accepting path.
func (b *Builder) End() *Builder {
	target := b.newState()
	b.states[target].accept = true
	b.states[target].action = func(eval Evaluation, _ ast.Node) Evaluation { return eval }
	for _, e := range b.ends {
		st := b.states[e.state]
		st.edges = append(st.edges, edge{
			predicate: func(n ast.Node) bool { return n.Kind() == ast.KindTerminal },
			target:    target,
		})
	}
	b.ends = []endPoint{{state: target}}
	return b
}

// ThenMapToTokens attaches a reduce action to the current position: when reached, every node
// matched since the previous token-producing action (plus the node that triggers this one) is
// folded through fn into tokens appended to the evaluation.
func (b *Builder) ThenMapToTokens(fn func([]ast.Node) []ir.Token) *Builder {
	return b.attachAction(func(eval Evaluation, node ast.Node) Evaluation {
		eval.Nodes = append(eval.Nodes, node)
		eval.Tokens = append(eval.Tokens, fn(eval.Nodes)...)
		eval.Nodes = nil
		return eval
	})
}

// AndThen is an alias for ThenMapToTokens, read naturally when the mapped nodes are a single
// already-complete construct rather than an accumulated repetition.
func (b *Builder) AndThen(fn func([]ast.Node) []ir.Token) *Builder {
	return b.ThenMapToTokens(fn)
}

// ThenMapTokens post-processes the tokens produced so far (e.g. to insert a separator between
// repeated groups). The triggering node is added to the accumulated node list, which is left
// unreduced.
func (b *Builder) ThenMapTokens(fn func([]ir.Token) []ir.Token) *Builder {
	return b.attachAction(func(eval Evaluation, node ast.Node) Evaluation {
		eval.Nodes = append(eval.Nodes, node)
		eval.Tokens = fn(eval.Tokens)
		return eval
	})
}

// attachAction installs action directly on the states at the builder's current end points. This
// requires those end points to be genuine consuming-edge targets (the result of NodeOfType,
// AnyNode, ExactlyOne or End) rather than a bare quantifier's epsilon bypass -- a reducer placed
// directly after a ZeroOrOne/ZeroOrMore with no intervening consumption would never run, since it
// would sit on a state only ever reached by epsilon. Patterns that need to reduce a repeated group
// attach ThenMapToTokens inside the quantifier's body, after a consuming call, so it runs once per
// occurrence.
func (b *Builder) attachAction(action Action) *Builder {
	for _, e := range b.ends {
		b.states[e.state].action = action
	}
	return b
}

// Build compiles the pattern. The builder must not be reused afterwards.
func (b *Builder) Build() *Pattern {
	return &Pattern{states: b.states, start: b.start}
}
