package format

import (
	"fmt"
	"strings"

	"github.com/bracefmt/bracefmt/ast"
)

// binaryOperators lists the operator punctuation parseExpression treats as left-associative
// binary infix operators, all at one precedence level -- sufficient for the condition chains
// (E3/E5) this reference grammar needs to exercise.
var binaryOperators = map[string]bool{
	"&&": true, "||": true, "==": true, "!=": true,
	"<": true, "<=": true, ">": true, ">=": true,
}

// parser is a small recursive-descent parser over a flat lexToken stream, grounded on the
// teacher's hand-written parser: it tracks a cursor into the token slice and builds [ast.Node]
// trees directly, with no separate AST-builder indirection.
type parser struct {
	path string
	toks []lexToken
	pos  int
}

func newParser(path string, toks []lexToken) *parser {
	return &parser{path: path, toks: toks}
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Path: p.path, Line: p.toks[p.pos].line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) cur() lexToken { return p.toks[p.pos] }

func (p *parser) atEOF() bool { return p.cur().kind == tokEOF }

func (p *parser) advance() lexToken {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// skipWS skips same-line whitespace only, leaving newlines in place for the caller to inspect.
func (p *parser) skipWS() {
	for p.cur().kind == tokWhitespace {
		p.advance()
	}
}

// skipWSAndNL skips whitespace and newlines both, discarding blank-line information; used inside
// constructs where original vertical spacing carries no meaning (parameter lists, expressions).
func (p *parser) skipWSAndNL() {
	for p.cur().kind == tokWhitespace || p.cur().kind == tokNewline {
		p.advance()
	}
}

// consumeBlankRun skips a run of whitespace/newline/comment tokens that separates two top-level
// items or statements, returning the concatenation of any newline text encountered so the caller
// can preserve a blank-line hint, and any interspersed standalone comments as nodes.
func (p *parser) consumeBlankRun() (string, []ast.Node) {
	var nl strings.Builder
	var comments []ast.Node
	for {
		switch p.cur().kind {
		case tokWhitespace:
			p.advance()
		case tokNewline:
			nl.WriteString(p.cur().text)
			p.advance()
		case tokLineComment:
			comments = append(comments, ast.NewLeaf(ast.KindLineComment, p.cur().text))
			p.advance()
		case tokBlockComment:
			comments = append(comments, ast.NewLeaf(ast.KindBlockComment, p.cur().text))
			p.advance()
		case tokKDoc:
			comments = append(comments, ast.NewLeaf(ast.KindKDoc, p.cur().text))
			p.advance()
		default:
			return nl.String(), comments
		}
	}
}

func (p *parser) expectPunct(text string) (lexToken, *ParseError) {
	p.skipWS()
	if p.cur().kind != tokPunctuation || p.cur().text != text {
		return lexToken{}, p.errorf("expected %q, found %q", text, p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(text string) (lexToken, *ParseError) {
	p.skipWS()
	if p.cur().kind != tokKeyword || p.cur().text != text {
		return lexToken{}, p.errorf("expected keyword %q, found %q", text, p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) expectIdentifier() (lexToken, *ParseError) {
	p.skipWS()
	if p.cur().kind != tokIdentifier {
		return lexToken{}, p.errorf("expected identifier, found %q", p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) peekPunctIs(text string) bool {
	save := p.pos
	p.skipWS()
	ok := p.cur().kind == tokPunctuation && p.cur().text == text
	p.pos = save
	return ok
}

func (p *parser) peekKeywordIs(text string) bool {
	save := p.pos
	p.skipWS()
	ok := p.cur().kind == tokKeyword && p.cur().text == text
	p.pos = save
	return ok
}

// parseFile parses an entire source file into a KindFile tree: a sequence of package/import
// directives, declarations, standalone comments, and Newline leaves marking blank-line runs
// between them.
func (p *parser) parseFile() (ast.Node, *ParseError) {
	var children []ast.Node
	first := true
	for {
		if !first {
			nl, comments := p.consumeBlankRun()
			if nl != "" {
				children = append(children, ast.NewLeaf(ast.KindNewline, nl))
			}
			children = append(children, comments...)
		}
		first = false
		p.skipWS()
		if p.atEOF() {
			break
		}
		item, err := p.parseTopLevelItem()
		if err != nil {
			return nil, err
		}
		children = append(children, item)
	}
	return ast.NewTree(ast.KindFile, children...), nil
}

func (p *parser) parseTopLevelItem() (ast.Node, *ParseError) {
	switch {
	case p.peekKeywordIs("package"):
		return p.parseDirective(ast.KindPackageDirective)
	case p.peekKeywordIs("import"):
		return p.parseDirective(ast.KindImportDirective)
	case p.peekKeywordIs("class"), p.peekKeywordIs("object"), p.peekKeywordIs("interface"):
		return p.parseClassDeclaration()
	case p.peekKeywordIs("fun"):
		return p.parseFunctionDeclaration()
	case p.peekKeywordIs("val"), p.peekKeywordIs("var"):
		return p.parsePropertyDeclaration()
	default:
		return nil, p.errorf("expected a declaration, found %q", p.cur().text)
	}
}

func (p *parser) parseDirective(kind ast.Kind) (ast.Node, *ParseError) {
	kw := p.advance()
	name, err := p.parseDotIdentifier()
	if err != nil {
		return nil, err
	}
	return ast.NewTree(kind, ast.NewLeaf(ast.KindKeyword, kw.text), name), nil
}

// parseDotIdentifier folds a run of "identifier (. identifier)*" tokens into one DotIdentifier
// leaf, since the scanners treat a qualified name as a single literal unit.
func (p *parser) parseDotIdentifier() (ast.Node, *ParseError) {
	first, perr := p.expectIdentifier()
	if perr != nil {
		return nil, perr
	}
	var sb strings.Builder
	sb.WriteString(first.text)
	for p.peekPunctIs(".") {
		p.skipWS()
		p.advance() // "."
		id, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		sb.WriteByte('.')
		sb.WriteString(id.text)
	}
	return ast.NewLeaf(ast.KindDotIdentifier, sb.String()), nil
}

func (p *parser) parseClassDeclaration() (ast.Node, *ParseError) {
	kw := p.advance()
	var kind ast.Kind
	switch kw.text {
	case "class":
		kind = ast.KindClassDeclaration
	case "object":
		kind = ast.KindObjectDeclaration
	default:
		kind = ast.KindInterfaceDeclaration
	}
	name, perr := p.expectIdentifier()
	if perr != nil {
		return nil, perr
	}
	children := []ast.Node{ast.NewLeaf(ast.KindKeyword, kw.text), ast.NewLeaf(ast.KindIdentifier, name.text)}
	if p.peekPunctIs("(") {
		params, err := p.parseParameterList()
		if err != nil {
			return nil, err
		}
		children = append(children, params)
	}
	if p.peekPunctIs("{") {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		children = append(children, block)
	}
	return ast.NewTree(kind, children...), nil
}

func (p *parser) parseFunctionDeclaration() (ast.Node, *ParseError) {
	kw, _ := p.expectKeyword("fun")
	name, perr := p.expectIdentifier()
	if perr != nil {
		return nil, perr
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	children := []ast.Node{ast.NewLeaf(ast.KindKeyword, kw.text), ast.NewLeaf(ast.KindIdentifier, name.text), params}

	if p.peekPunctIs(":") {
		p.skipWS()
		colon := p.advance()
		returnType, err := p.parseDotIdentifier()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.NewLeaf(ast.KindPunctuation, colon.text), returnType)
	}
	switch {
	case p.peekPunctIs("="):
		p.skipWS()
		eq := p.advance()
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.NewLeaf(ast.KindPunctuation, eq.text), body)
	case p.peekPunctIs("{"):
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		children = append(children, block)
	}
	return ast.NewTree(ast.KindFunctionDeclaration, children...), nil
}

func (p *parser) parsePropertyDeclaration() (ast.Node, *ParseError) {
	kw := p.advance() // val/var
	name, perr := p.expectIdentifier()
	if perr != nil {
		return nil, perr
	}
	eq, perr := p.expectPunct("=")
	if perr != nil {
		return nil, perr
	}
	p.skipWS()
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewTree(ast.KindPropertyDeclaration,
		ast.NewLeaf(ast.KindKeyword, kw.text),
		ast.NewLeaf(ast.KindIdentifier, name.text),
		ast.NewLeaf(ast.KindPunctuation, eq.text),
		rhs,
	), nil
}

func (p *parser) parseParameterList() (ast.Node, *ParseError) {
	open, perr := p.expectPunct("(")
	if perr != nil {
		return nil, perr
	}
	children := []ast.Node{ast.NewLeaf(ast.KindPunctuation, open.text)}
	p.skipWSAndNL()
	for !p.peekPunctIs(")") {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		colon, err := p.expectPunct(":")
		if err != nil {
			return nil, err
		}
		p.skipWS()
		typ, err := p.parseDotIdentifier()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.NewTree(ast.KindParameter,
			ast.NewLeaf(ast.KindIdentifier, name.text),
			ast.NewLeaf(ast.KindPunctuation, colon.text),
			typ,
		))
		p.skipWSAndNL()
		if p.peekPunctIs(",") {
			p.skipWS()
			p.advance()
			p.skipWSAndNL()
			continue
		}
		break
	}
	close, perr := p.expectPunct(")")
	if perr != nil {
		return nil, perr
	}
	children = append(children, ast.NewLeaf(ast.KindPunctuation, close.text))
	return ast.NewTree(ast.KindParameterList, children...), nil
}

func (p *parser) parseValueArgumentList() (ast.Node, *ParseError) {
	open, perr := p.expectPunct("(")
	if perr != nil {
		return nil, perr
	}
	children := []ast.Node{ast.NewLeaf(ast.KindPunctuation, open.text)}
	p.skipWSAndNL()
	for !p.peekPunctIs(")") {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		children = append(children, ast.NewTree(ast.KindValueArgument, arg))
		p.skipWSAndNL()
		if p.peekPunctIs(",") {
			p.skipWS()
			p.advance()
			p.skipWSAndNL()
			continue
		}
		break
	}
	close, perr := p.expectPunct(")")
	if perr != nil {
		return nil, perr
	}
	children = append(children, ast.NewLeaf(ast.KindPunctuation, close.text))
	return ast.NewTree(ast.KindValueArgumentList, children...), nil
}

func (p *parser) parseBlock() (ast.Node, *ParseError) {
	open, perr := p.expectPunct("{")
	if perr != nil {
		return nil, perr
	}
	children := []ast.Node{ast.NewLeaf(ast.KindPunctuation, open.text)}
	first := true
	for {
		if !first {
			nl, comments := p.consumeBlankRun()
			if nl != "" {
				children = append(children, ast.NewLeaf(ast.KindNewline, nl))
			}
			children = append(children, comments...)
		} else {
			p.skipWSAndNL()
		}
		first = false
		if p.peekPunctIs("}") {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, stmt)
	}
	close, perr := p.expectPunct("}")
	if perr != nil {
		return nil, perr
	}
	children = append(children, ast.NewLeaf(ast.KindPunctuation, close.text))
	return ast.NewTree(ast.KindBlock, children...), nil
}

func (p *parser) parseStatement() (ast.Node, *ParseError) {
	switch {
	case p.peekKeywordIs("val"), p.peekKeywordIs("var"):
		return p.parsePropertyDeclaration()
	case p.peekKeywordIs("if"):
		return p.parseIfExpression()
	default:
		return p.parseExpression()
	}
}

func (p *parser) parseIfExpression() (ast.Node, *ParseError) {
	kw, _ := p.expectKeyword("if")
	_, perr := p.expectPunct("(")
	if perr != nil {
		return nil, perr
	}
	p.skipWS()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	closeParen, perr := p.expectPunct(")")
	if perr != nil {
		return nil, perr
	}
	p.skipWS()
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	children := []ast.Node{
		ast.NewLeaf(ast.KindKeyword, kw.text),
		ast.NewLeaf(ast.KindPunctuation, "("),
		cond,
		ast.NewLeaf(ast.KindPunctuation, closeParen.text),
		thenBlock,
	}

	save := p.pos
	p.skipWSAndNL()
	if p.peekKeywordIs("else") {
		elseKw := p.advance()
		p.skipWS()
		var elseNode ast.Node
		if p.peekKeywordIs("if") {
			elseNode, err = p.parseIfExpression()
		} else {
			elseNode, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
		children = append(children, ast.NewLeaf(ast.KindKeyword, elseKw.text), elseNode)
	} else {
		p.pos = save
	}
	return ast.NewTree(ast.KindIfExpression, children...), nil
}

func (p *parser) parseExpression() (ast.Node, *ParseError) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		p.skipWS()
		if p.cur().kind != tokPunctuation || !binaryOperators[p.cur().text] {
			p.pos = save
			break
		}
		op := p.advance()
		p.skipWS()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = ast.NewTree(ast.KindBinaryExpression, left, ast.NewLeaf(ast.KindPunctuation, op.text), right)
	}
	return left, nil
}

// parsePostfix handles dot-qualified chains (E4) and call expressions layered on a primary.
func (p *parser) parsePostfix() (ast.Node, *ParseError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur().kind == tokPunctuation && p.cur().text == "(":
			args, err := p.parseValueArgumentList()
			if err != nil {
				return nil, err
			}
			expr = ast.NewTree(ast.KindCallExpression, expr, args)
		case p.cur().kind == tokPunctuation && p.cur().text == ".":
			p.advance()
			selector, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if p.cur().kind == tokPunctuation && p.cur().text == "(" {
				args, err := p.parseValueArgumentList()
				if err != nil {
					return nil, err
				}
				selector = ast.NewTree(ast.KindCallExpression, selector, args)
			}
			expr = ast.NewTree(ast.KindDotQualifiedExpression, expr, ast.NewLeaf(ast.KindPunctuation, "."), selector)
		case p.cur().kind == tokPunctuation && p.cur().text == "?.":
			p.advance()
			selector, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if p.cur().kind == tokPunctuation && p.cur().text == "(" {
				args, err := p.parseValueArgumentList()
				if err != nil {
					return nil, err
				}
				selector = ast.NewTree(ast.KindCallExpression, selector, args)
			}
			expr = ast.NewTree(ast.KindSafeDotQualifiedExpression, expr, ast.NewLeaf(ast.KindPunctuation, "?."), selector)
		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Node, *ParseError) {
	switch p.cur().kind {
	case tokIdentifier, tokKeyword:
		t := p.advance()
		return ast.NewLeaf(ast.KindIdentifier, t.text), nil
	case tokStringLiteral:
		return p.parseStringLiteral(p.advance())
	case tokPunctuation:
		if p.cur().text == "(" {
			p.advance()
			p.skipWSAndNL()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.skipWSAndNL()
			if _, perr := p.expectPunct(")"); perr != nil {
				return nil, perr
			}
			return inner, nil
		}
		return nil, p.errorf("unexpected punctuation %q in expression", p.cur().text)
	default:
		return nil, p.errorf("unexpected token %q in expression", p.cur().text)
	}
}

// parseStringLiteral splits a whole "..."-with-templates token (as produced by [lexer.lexString])
// into literal-text spans and StringTemplateEntry children, recursively lexing and parsing each
// ${...} span as its own expression.
func (p *parser) parseStringLiteral(t lexToken) (ast.Node, *ParseError) {
	body := t.text
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	children := []ast.Node{}
	var lit strings.Builder
	runes := []rune(body)
	i := 0
	flush := func() {
		if lit.Len() > 0 {
			children = append(children, ast.NewLeaf(ast.KindIdentifier, lit.String()))
			lit.Reset()
		}
	}
	for i < len(runes) {
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			flush()
			depth := 1
			start := i + 2
			j := start
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := string(runes[start:j])
			entryExpr, err := parseExpressionSource(p.path, inner, t.line)
			if err != nil {
				return nil, err
			}
			children = append(children, ast.NewTree(ast.KindStringTemplateEntry, entryExpr))
			i = j + 1
			continue
		}
		lit.WriteRune(runes[i])
		i++
	}
	flush()
	return ast.NewTree(ast.KindStringLiteral, children...), nil
}

// parseExpressionSource lexes and parses a standalone expression fragment (the inside of a
// "${...}" template span) in isolation.
func parseExpressionSource(path, src string, line int) (ast.Node, *ParseError) {
	toks := newLexer(src).tokens()
	sub := newParser(path, toks)
	sub.skipWS()
	expr, err := sub.parseExpression()
	if err != nil {
		err.Line = line
		return nil, err
	}
	return expr, nil
}
