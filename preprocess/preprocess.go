// Package preprocess implements the TokenPreprocessor: a single pass over a scanner's raw
// [ir.Token] stream that resolves block lengths, synchronized/marker breaks, and comment-adjacent
// whitespace before the [printer] package makes any line-breaking decisions.
package preprocess

import (
	"strings"

	"github.com/bracefmt/bracefmt/internal/assert"
	"github.com/bracefmt/bracefmt/ir"
)

// stackElement is one entry of the preprocessor's working stack.
type stackElement interface {
	stackElement()
}

// blockElement accumulates tokens for a block opened by a Begin.
type blockElement struct {
	state  ir.State
	tokens []ir.Token
}

func (*blockElement) stackElement() {}

// whitespaceElement buffers a pending whitespace so its length can include the next
// non-breaking prefix once that prefix is known.
type whitespaceElement struct {
	content string
}

func (*whitespaceElement) stackElement() {}

// markerElement records a position inside a block for a later BlockFromMarker rewrite: index is
// the length of the enclosing block's token list when the Marker arrived.
type markerElement struct {
	index int
}

func (*markerElement) stackElement() {}

// Run preprocesses a raw scanner token stream and returns the rewritten stream with all lengths
// resolved and no residual Marker/BlockFromMarker/BlockFromLastForcedBreak tokens.
func Run(tokens []ir.Token) []ir.Token {
	p := &preprocessor{}
	p.push(&blockElement{state: ir.Code})
	for _, t := range tokens {
		p.step(t)
	}
	p.flushDeferredEnds()
	final := p.popBlock()
	return final.tokens
}

type preprocessor struct {
	stack        []stackElement
	deferredEnds int
}

func (p *preprocessor) push(e stackElement) {
	p.stack = append(p.stack, e)
}

func (p *preprocessor) top() stackElement {
	assert.That(len(p.stack) > 0, "preprocessor stack underflow")
	return p.stack[len(p.stack)-1]
}

func (p *preprocessor) pop() stackElement {
	assert.That(len(p.stack) > 0, "preprocessor stack underflow")
	e := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return e
}

func (p *preprocessor) currentBlock() *blockElement {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if b, ok := p.stack[i].(*blockElement); ok {
			return b
		}
	}
	assert.That(false, "no enclosing block on preprocessor stack")
	return nil
}

func (p *preprocessor) emit(t ir.Token) {
	p.currentBlock().tokens = append(p.currentBlock().tokens, t)
}

// step processes one raw token, applying rewrites 1-9 in the order spec'd.
func (p *preprocessor) step(t ir.Token) {
	// Rewrite 1: EndToken deferral. Any non-Leaf, non-End token flushes pending ends first.
	if _, ok := t.(ir.End); ok {
		p.deferredEnds++
		return
	}
	if _, isLeaf := t.(ir.Leaf); !isLeaf && p.deferredEnds > 0 {
		p.flushDeferredEnds()
	}

	switch tok := t.(type) {
	case ir.Leaf:
		p.flushWhitespace(t)
		p.emit(t)
	case ir.Whitespace:
		p.pushWhitespace(tok)
	case ir.Begin:
		p.flushWhitespace(t)
		p.push(&blockElement{state: tok.State})
	case ir.ForcedBreak, ir.ClosingForcedBreak:
		p.flushWhitespace(t)
		p.emitDroppingSyncAfterForced(t)
	case ir.SynchronizedBreak, ir.ClosingSynchronizedBreak:
		p.flushWhitespace(t)
		p.emitDroppingSyncAfterForced(t)
	case ir.Marker:
		p.flushWhitespace(t)
		p.push(&markerElement{index: len(p.currentBlock().tokens)})
	case ir.BlockFromMarker:
		p.flushWhitespace(t)
		p.rewriteBlockFromMarker()
	case ir.BlockFromLastForcedBreak:
		p.flushWhitespace(t)
		p.rewriteBlockFromLastForcedBreak()
	case ir.KDocContent:
		p.flushWhitespace(t)
		p.emit(t)
	default:
		p.flushWhitespace(t)
		p.emit(t)
	}
}

// emitDroppingSyncAfterForced implements rewrite 5: a SynchronizedBreak/ClosingSynchronizedBreak
// immediately after a forced break variant in the same block is dropped.
func (p *preprocessor) emitDroppingSyncAfterForced(t ir.Token) {
	block := p.currentBlock()
	if isSyncBreak(t) && len(block.tokens) > 0 && isForcedBreak(block.tokens[len(block.tokens)-1]) {
		return
	}
	block.tokens = append(block.tokens, t)
}

func isSyncBreak(t ir.Token) bool {
	switch t.(type) {
	case ir.SynchronizedBreak, ir.ClosingSynchronizedBreak:
		return true
	}
	return false
}

func isForcedBreak(t ir.Token) bool {
	switch t.(type) {
	case ir.ForcedBreak, ir.ClosingForcedBreak:
		return true
	}
	return false
}

// pushWhitespace implements rewrite 2: dedup of consecutive whitespace. A whitespace arriving while
// another is buffered on top collapses into it: its content replaces the buffered content when it
// is non-empty or when the buffered content is empty, and is dropped otherwise. With no whitespace
// buffered on top, it is pushed fresh.
func (p *preprocessor) pushWhitespace(w ir.Whitespace) {
	if ws, ok := p.top().(*whitespaceElement); ok {
		if w.Content != "" || ws.content == "" {
			ws.content = w.Content
		}
		return
	}
	p.push(&whitespaceElement{content: w.Content})
}

// flushWhitespace implements rewrite 8 and 9: resolve a pending whitespace once the next element
// (about to be processed as `next`) is known.
func (p *preprocessor) flushWhitespace(next ir.Token) {
	ws, ok := p.top().(*whitespaceElement)
	if !ok {
		return
	}
	p.pop()

	if strings.Contains(ws.content, "\n") {
		if begin, ok := next.(ir.Begin); ok && isCommentState(begin.State) {
			count := min(strings.Count(ws.content, "\n"), 2)
			p.emitDroppingSyncAfterForced(ir.ForcedBreak{Count: count})
			return
		}
	}

	length := 0
	if ws.content != "" {
		length = 1
	}
	length += leadingNonBreakingWidth(next)
	p.emit(ir.Whitespace{Content: ws.content, Length: length})
}

func isCommentState(s ir.State) bool {
	switch s {
	case ir.LineComment, ir.BlockComment, ir.KDoc:
		return true
	}
	return false
}

// leadingNonBreakingWidth approximates the width contributed by the immediately following
// non-breaking run for the purpose of a Whitespace token's Length. Leaves contribute their
// display width; a Begin contributes nothing here (its own Length is resolved when the block
// pops, and the printer consults it directly), everything else contributes nothing.
func leadingNonBreakingWidth(t ir.Token) int {
	if leaf, ok := t.(ir.Leaf); ok {
		return ir.DisplayWidth(leaf.Text)
	}
	return 0
}

// flushDeferredEnds pops exactly as many blocks as EndTokens were deferred, in order, now that a
// non-Leaf, non-End token has arrived (or input has ended). This is rewrite 3/1 combined: the
// deferral lets trailing literal leaves sink into the closing block's length.
func (p *preprocessor) flushDeferredEnds() {
	for p.deferredEnds > 0 {
		p.deferredEnds--
		p.closeBlock()
	}
}

// closeBlock implements rewrite 3 and 4: pop the top block, compute its length, promote
// synchronized breaks if it contains a forced break or multi-line KDocContent at depth 0, then
// emit Begin(state, length), its tokens, End into the parent.
func (p *preprocessor) closeBlock() {
	// Any whitespace still buffered directly under this block belongs to it and must be resolved
	// against nothing (end of block) before popping.
	if ws, ok := p.top().(*whitespaceElement); ok {
		p.pop()
		length := 0
		if ws.content != "" {
			length = 1
		}
		p.currentBlock().tokens = append(p.currentBlock().tokens, ir.Whitespace{Content: ws.content, Length: length})
	}

	block, ok := p.pop().(*blockElement)
	assert.That(ok, "closeBlock: top of stack is not a block")

	promoteSynchronizedBreaks(block.tokens)

	length := blockTextLength(block.tokens)

	parent := p.currentBlock()
	parent.tokens = append(parent.tokens, ir.Begin{State: block.state, Length: length})
	parent.tokens = append(parent.tokens, block.tokens...)
	parent.tokens = append(parent.tokens, ir.End{})
}

// popBlock pops the outermost block (there is no parent to append to) and returns it.
func (p *preprocessor) popBlock() *blockElement {
	if ws, ok := p.top().(*whitespaceElement); ok {
		p.pop()
		length := 0
		if ws.content != "" {
			length = 1
		}
		if len(p.stack) > 0 {
			if b, ok2 := p.top().(*blockElement); ok2 {
				b.tokens = append(b.tokens, ir.Whitespace{Content: ws.content, Length: length})
			}
		}
	}
	block, ok := p.pop().(*blockElement)
	assert.That(ok, "popBlock: top of stack is not a block")
	promoteSynchronizedBreaks(block.tokens)
	return block
}

// promoteSynchronizedBreaks implements rewrite 4: if any depth-0 ForcedBreak, ClosingForcedBreak,
// or multi-line KDocContent appears in tokens, rewrite every depth-0 SynchronizedBreak and
// ClosingSynchronizedBreak in place.
func promoteSynchronizedBreaks(tokens []ir.Token) {
	hasForced := false
	depth := 0
	for _, t := range tokens {
		switch tok := t.(type) {
		case ir.Begin:
			depth++
		case ir.End:
			depth--
		case ir.ForcedBreak:
			if depth == 0 {
				hasForced = true
			}
		case ir.ClosingForcedBreak:
			if depth == 0 {
				hasForced = true
			}
		case ir.KDocContent:
			if depth == 0 && strings.Contains(tok.Text, "\n") {
				hasForced = true
			}
		}
	}
	if !hasForced {
		return
	}
	depth = 0
	for i, t := range tokens {
		switch tok := t.(type) {
		case ir.Begin:
			depth++
		case ir.End:
			depth--
		case ir.SynchronizedBreak:
			if depth == 0 {
				tokens[i] = ir.ForcedBreak{Count: 1}
			}
		case ir.ClosingSynchronizedBreak:
			if depth == 0 {
				tokens[i] = ir.ClosingForcedBreak{}
			}
		default:
			_ = tok
		}
	}
}

// blockTextLength sums the displayed width of a block's constituent tokens at depth 0 plus the
// already-resolved lengths of nested Begins, i.e. its flat width per the §3.2 invariant.
func blockTextLength(tokens []ir.Token) int {
	length := 0
	depth := 0
	for _, t := range tokens {
		switch tok := t.(type) {
		case ir.Leaf:
			if depth == 0 {
				length += ir.DisplayWidth(tok.Text)
			}
		case ir.Whitespace:
			if depth == 0 && tok.Content != "" {
				length++
			}
		case ir.Begin:
			if depth == 0 {
				length += tok.Length
			}
			depth++
		case ir.End:
			depth--
		case ir.KDocContent:
			if depth == 0 {
				length += ir.LongestLineWidth(tok.Text)
			}
		}
	}
	return length
}

// rewriteBlockFromMarker implements rewrite 7's first directive: pop stack elements until the
// nearest MarkerElement or BlockStackElement. If a BlockStackElement was popped, a fresh empty one
// is pushed in its place so the preceding block is preserved, then a synthetic Begin(Code)...End
// wraps the popped suffix's tokens.
func (p *preprocessor) rewriteBlockFromMarker() {
	suffix := p.popToMarkerOrBlock()
	p.wrapSuffix(suffix)
}

// rewriteBlockFromLastForcedBreak behaves like rewriteBlockFromMarker but keys off the last forced
// break in the current block, treating forced breaks as implicit markers. Absent such a break
// (the Open Question in spec §9), it falls back to wrapping from the current block's Begin.
func (p *preprocessor) rewriteBlockFromLastForcedBreak() {
	block := p.currentBlock()
	idx := lastForcedBreakIndex(block.tokens)
	var suffix []ir.Token
	if idx < 0 {
		suffix = block.tokens
		block.tokens = nil
	} else {
		suffix = append([]ir.Token(nil), block.tokens[idx+1:]...)
		block.tokens = block.tokens[:idx+1]
	}
	p.wrapSuffix(suffix)
}

func lastForcedBreakIndex(tokens []ir.Token) int {
	depth := 0
	last := -1
	for i, t := range tokens {
		switch t.(type) {
		case ir.Begin:
			depth++
		case ir.End:
			depth--
		case ir.ForcedBreak, ir.ClosingForcedBreak:
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}

// popToMarkerOrBlock finds the nearest MarkerElement or the current BlockStackElement on the stack
// (step has already flushed any buffered whitespace). For a MarkerElement it removes the marker
// and returns the tokens the current block has accumulated since the marker, truncating the block
// to the tokens before it; for the current block it returns all of that block's tokens and leaves
// the block in place, emptied.
func (p *preprocessor) popToMarkerOrBlock() []ir.Token {
	block := p.currentBlock()
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch e := p.stack[i].(type) {
		case *markerElement:
			suffix := append([]ir.Token(nil), block.tokens[e.index:]...)
			block.tokens = block.tokens[:e.index]
			p.stack = p.stack[:i]
			return suffix
		case *blockElement:
			if e == block {
				suffix := e.tokens
				e.tokens = nil
				return suffix
			}
		}
	}
	assert.That(false, "BlockFromMarker with no enclosing marker or block")
	return nil
}

func (p *preprocessor) wrapSuffix(suffix []ir.Token) {
	promoteSynchronizedBreaks(suffix)
	length := blockTextLength(suffix)
	block := p.currentBlock()
	block.tokens = append(block.tokens, ir.Begin{State: ir.Code, Length: length})
	block.tokens = append(block.tokens, suffix...)
	block.tokens = append(block.tokens, ir.End{})
}
