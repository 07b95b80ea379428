// Package printer renders a preprocessed [ir.Token] stream to text: it decides, block by block,
// whether a [ir.Begin] fits flat on the current line or must break, and emits indentation,
// newlines, and literal content accordingly.
package printer

import (
	"strings"

	"github.com/bracefmt/bracefmt/internal/assert"
	"github.com/bracefmt/bracefmt/ir"
	"github.com/bracefmt/bracefmt/kdoc"
)

// Options configures a Printer.
type Options struct {
	// MaxLineLength is the target column beyond which a block that doesn't fit must break.
	MaxLineLength int
	// StandardIndent is the column increment applied inside a broken structural block (an if
	// condition, a parameter list, a class/function body).
	StandardIndent int
	// ContinuationIndent is the column increment applied when a plain Whitespace inside an
	// otherwise-flat block breaks because what follows doesn't fit (a statement continuation:
	// the RHS of an assignment, a wrapped call chain, a wrapped string literal).
	ContinuationIndent int
}

// frame is one entry of the printer's block stack.
type frame struct {
	state ir.State
	// broken is decided once, when the block opens, from its flat Length: it governs whether
	// this block's SynchronizedBreak/ClosingSynchronizedBreak tokens fire (Oppen "consistent"
	// breaking -- all or none). Plain Whitespace tokens are not governed by this flag; they
	// break independently based on the actual column at the point they're reached.
	broken bool
	// outerIndent is the indent of the line on which this block opened, used by closing breaks
	// (to align a closing delimiter with the line that opened the block) and by whitespace-fill
	// breaks (which indent by ContinuationIndent from that indent, not from whatever structural
	// indent the block's state carries).
	outerIndent int
	// innerIndent is outerIndent + the state's structural indent increment, used by ForcedBreak
	// and firing SynchronizedBreak tokens.
	innerIndent int
}

// Printer renders a token stream produced by [preprocess.Run].
type Printer struct {
	opts Options

	sb              strings.Builder
	column          int
	writtenNewlines int
	pendingSpace    string
	pendingIndent   int
	stack           []frame
}

// New creates a Printer with the given options.
func New(opts Options) *Printer {
	return &Printer{opts: opts}
}

// Print renders tokens and returns the resulting text. A Printer may be reused across calls; each
// call starts from a clean internal state, per the requirement that a formatter never leaks state
// between files.
func (p *Printer) Print(tokens []ir.Token) string {
	p.sb.Reset()
	p.column = 0
	p.writtenNewlines = 0
	p.pendingSpace = ""
	p.pendingIndent = 0
	p.stack = p.stack[:0]
	p.stack = append(p.stack, frame{state: ir.Code})

	i := 0
	for i < len(tokens) {
		i = p.step(tokens, i)
	}
	return strings.TrimRight(p.sb.String(), "\n") + "\n"
}

func (p *Printer) top() *frame {
	assert.That(len(p.stack) > 0, "printer block stack underflow")
	return &p.stack[len(p.stack)-1]
}

func structuralIncrement(opts Options, s ir.State) int {
	switch s {
	case ir.StringLiteral, ir.MultilineString, ir.LineComment, ir.BlockComment, ir.KDoc, ir.PackageImport:
		return 0
	default:
		return opts.StandardIndent
	}
}

// step handles the token at i and returns the index of the next unhandled token.
func (p *Printer) step(tokens []ir.Token, i int) int {
	switch t := tokens[i].(type) {
	case ir.Leaf:
		p.writeText(t.Text)
		return i + 1
	case ir.Whitespace:
		if p.shouldBreakWhitespace(t) {
			if p.top().state == ir.StringLiteral {
				p.writeText(`"`)
				p.writeText(" +")
				p.newline(p.top().outerIndent+p.opts.ContinuationIndent, 1)
				p.writeText(`"`)
			} else {
				p.newline(p.top().outerIndent+p.opts.ContinuationIndent, 1)
			}
		} else {
			p.pendingSpace = t.Content
		}
		return i + 1
	case ir.Begin:
		return p.printBlock(tokens, i)
	case ir.ForcedBreak:
		p.newline(p.top().innerIndent, t.Count)
		return i + 1
	case ir.ClosingForcedBreak:
		p.newline(p.top().outerIndent, 1)
		return i + 1
	case ir.SynchronizedBreak:
		if p.top().broken {
			p.newline(p.top().innerIndent, 1)
		} else {
			p.writeSpaces(t.WhitespaceLength)
		}
		return i + 1
	case ir.ClosingSynchronizedBreak:
		if p.top().broken {
			p.newline(p.top().outerIndent, 1)
		} else {
			p.writeSpaces(t.WhitespaceLength)
		}
		return i + 1
	case ir.KDocContent:
		p.writeCommentContent(t)
		return i + 1
	default:
		assert.That(false, "printer: unexpected token %T reached print loop", t)
		return i + 1
	}
}

// shouldBreakWhitespace implements the §4.3 per-Whitespace decision rule: break if the block
// remaining from here, column+length, would exceed the line limit. PACKAGE_IMPORT and
// MULTILINE_STRING never break on plain whitespace.
func (p *Printer) shouldBreakWhitespace(t ir.Whitespace) bool {
	switch p.top().state {
	case ir.PackageImport, ir.MultilineString:
		return false
	}
	return p.opts.MaxLineLength > 0 && p.column+t.Length > p.opts.MaxLineLength
}

// printBlock handles a Begin, pushing a frame, deciding once whether it is broken for the purpose
// of its own SynchronizedBreak tokens, recursing over its body, and popping on the matching End.
func (p *Printer) printBlock(tokens []ir.Token, i int) int {
	begin := tokens[i].(ir.Begin)
	end := matchingEnd(tokens, i)

	broken := p.opts.MaxLineLength > 0 && p.column+begin.Length > p.opts.MaxLineLength
	if begin.State == ir.PackageImport {
		broken = false
	}

	outer := p.pendingIndent
	inner := outer + structuralIncrement(p.opts, begin.State)
	p.stack = append(p.stack, frame{state: begin.State, broken: broken, outerIndent: outer, innerIndent: inner})

	switch begin.State {
	case ir.StringLiteral, ir.MultilineString:
		p.writeStringLiteralBlock(tokens[i+1 : end])
	default:
		j := i + 1
		for j < end {
			j = p.step(tokens, j)
		}
	}

	p.stack = p.stack[:len(p.stack)-1]
	return end + 1
}

// matchingEnd returns the index of the End matching the Begin at i.
func matchingEnd(tokens []ir.Token, i int) int {
	depth := 0
	for j := i; j < len(tokens); j++ {
		switch tokens[j].(type) {
		case ir.Begin:
			depth++
		case ir.End:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	assert.That(false, "printer: Begin at %d has no matching End", i)
	return len(tokens)
}

func (p *Printer) writeText(text string) {
	if p.pendingSpace != "" {
		p.sb.WriteString(p.pendingSpace)
		p.column += ir.DisplayWidth(p.pendingSpace)
		p.pendingSpace = ""
	} else if p.writtenNewlines > 0 {
		p.writeIndentColumns(p.pendingIndent)
	}
	p.sb.WriteString(text)
	p.column += ir.DisplayWidth(text)
	p.writtenNewlines = 0
}

func (p *Printer) writeSpaces(n int) {
	if n <= 0 {
		return
	}
	p.writeText(strings.Repeat(" ", n))
}

func (p *Printer) writeIndentColumns(columns int) {
	if columns > 0 {
		p.sb.WriteString(strings.Repeat(" ", columns))
	}
}

// newline emits newlines until count of them stand in a row since the last written text, so a run
// of breaks merges rather than adds up (the largest count wins; a count of 2 yields one blank
// line), discards trailing pending whitespace, and records indent for the next written text.
func (p *Printer) newline(indent, count int) {
	p.pendingSpace = ""
	for ; p.writtenNewlines < count; p.writtenNewlines++ {
		p.sb.WriteByte('\n')
	}
	p.column = indent
	p.pendingIndent = indent
}

// writeStringLiteralBlock renders a string/multiline-string body (E7): the leading and trailing
// quote delimiters are ordinary Leaf tokens emitted by the scanner, and a Whitespace between words
// inside the literal is an ordinary fill-break candidate. When such a break actually fires, step
// splices in the closing quote, `+` concatenation, and reopening quote around it; when it doesn't,
// the Whitespace just prints its Content, leaving the literal's text unbroken.
func (p *Printer) writeStringLiteralBlock(body []ir.Token) {
	j := 0
	for j < len(body) {
		j = p.step(body, j)
	}
}

// writeCommentContent dispatches a KDocContent token's rendering on the enclosing block's state:
// KDoc reflows its prose, while LineComment and BlockComment preserve their text verbatim.
func (p *Printer) writeCommentContent(t ir.KDocContent) {
	switch p.top().state {
	case ir.LineComment:
		p.writeLineComment(t.Text)
	case ir.BlockComment:
		p.writeBlockComment(t.Text)
	default:
		p.writeKDocBlock(t)
	}
}

// writeLineComment renders a "//"-prefixed comment verbatim; a line comment spans a single
// physical source line, so its text never contains a newline.
func (p *Printer) writeLineComment(text string) {
	p.writeText("// " + text)
}

// writeBlockComment renders a "/* ... */" comment verbatim. A body with no newline collapses to a
// single-line form; a multi-line body takes the "* "-prefixed continuation form, one output line
// per input line, with no reflowing of its content.
func (p *Printer) writeBlockComment(text string) {
	if !strings.Contains(text, "\n") {
		p.writeText("/* " + text + " */")
		return
	}
	lines := strings.Split(text, "\n")
	p.writeText("/*")
	for _, line := range lines {
		p.newline(p.top().innerIndent, 1)
		if line == "" {
			p.writeText(" *")
		} else {
			p.writeText(" * " + line)
		}
	}
	p.newline(p.top().innerIndent, 1)
	p.writeText(" */")
}

// writeKDocBlock delegates documentation formatting to the kdoc package and splices the result in,
// line by line, at the printer's current indentation. The wrap width subtracts the 3-column " * "
// continuation prefix kdoc.Format prepends to every multi-line output line, so a wrapped line plus
// its prefix still fits MaxLineLength.
func (p *Printer) writeKDocBlock(t ir.KDocContent) {
	formatted := kdoc.Format(t.Text, p.opts.MaxLineLength-p.top().innerIndent-3)
	lines := strings.Split(formatted, "\n")
	for idx, line := range lines {
		if idx > 0 {
			p.newline(p.top().innerIndent, 1)
		}
		if line == "" {
			continue
		}
		p.writeText(line)
	}
}
