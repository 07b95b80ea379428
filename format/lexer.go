package format

import (
	"strings"
	"unicode"
)

// tokKind classifies a lexed token before it is folded into an [ast.Node].
type tokKind int

const (
	tokEOF tokKind = iota
	tokKeyword
	tokIdentifier
	tokPunctuation
	tokStringLiteral
	tokWhitespace
	tokNewline
	tokKDoc
	tokLineComment
	tokBlockComment
	tokError
)

type lexToken struct {
	kind tokKind
	text string
	line int
}

var keywords = map[string]bool{
	"package": true, "import": true, "class": true, "object": true, "interface": true,
	"fun": true, "val": true, "var": true, "if": true, "else": true, "return": true,
	"true": true, "false": true, "null": true, "this": true, "when": true, "for": true,
	"while": true, "private": true, "public": true, "internal": true, "data": true,
	"override": true, "open": true, "companion": true,
}

// lexer tokenizes target-language source with a two-rune lookahead, in the manner of a
// hand-written recursive-descent scanner: cur/peek runes, explicit line tracking, greedy error
// recovery that never aborts the whole scan on one bad rune.
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func (l *lexer) cur() rune {
	if l.pos >= len(l.src) {
		return -1
	}
	return l.src[l.pos]
}

func (l *lexer) peek(n int) rune {
	if l.pos+n >= len(l.src) {
		return -1
	}
	return l.src[l.pos+n]
}

func (l *lexer) advance() rune {
	r := l.cur()
	if r == '\n' {
		l.line++
	}
	l.pos++
	return r
}

// tokens lexes the entire input into a flat slice, terminated by a tokEOF entry.
func (l *lexer) tokens() []lexToken {
	var out []lexToken
	for {
		t := l.next()
		out = append(out, t)
		if t.kind == tokEOF {
			return out
		}
	}
}

func (l *lexer) next() lexToken {
	startLine := l.line
	r := l.cur()
	switch {
	case r == -1:
		return lexToken{kind: tokEOF, line: startLine}
	case r == ' ' || r == '\t':
		return l.lexWhitespace()
	case r == '\n' || r == '\r':
		return l.lexNewline()
	case r == '/' && l.peek(1) == '*' && l.peek(2) == '*':
		return l.lexKDoc()
	case r == '/' && l.peek(1) == '*':
		return l.lexBlockComment()
	case r == '/' && l.peek(1) == '/':
		return l.lexLineComment()
	case r == '"':
		return l.lexString()
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return l.lexIdentifier()
	default:
		return l.lexPunctuation()
	}
}

func (l *lexer) lexWhitespace() lexToken {
	line := l.line
	var sb strings.Builder
	for l.cur() == ' ' || l.cur() == '\t' {
		sb.WriteRune(l.advance())
	}
	return lexToken{kind: tokWhitespace, text: sb.String(), line: line}
}

func (l *lexer) lexNewline() lexToken {
	line := l.line
	var sb strings.Builder
	for l.cur() == '\n' || l.cur() == '\r' {
		if l.cur() == '\r' {
			l.advance()
			continue
		}
		sb.WriteRune(l.advance())
	}
	return lexToken{kind: tokNewline, text: sb.String(), line: line}
}

func (l *lexer) lexIdentifier() lexToken {
	line := l.line
	start := l.pos
	for unicode.IsLetter(l.cur()) || unicode.IsDigit(l.cur()) || l.cur() == '_' {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if keywords[text] {
		return lexToken{kind: tokKeyword, text: text, line: line}
	}
	return lexToken{kind: tokIdentifier, text: text, line: line}
}

var multiCharPunct = []string{"?.", "&&", "||", "==", "!=", "<=", ">=", "${"}

func (l *lexer) lexPunctuation() lexToken {
	line := l.line
	for _, mc := range multiCharPunct {
		if l.startsWith(mc) {
			for range mc {
				l.advance()
			}
			return lexToken{kind: tokPunctuation, text: mc, line: line}
		}
	}
	r := l.advance()
	return lexToken{kind: tokPunctuation, text: string(r), line: line}
}

func (l *lexer) startsWith(s string) bool {
	rs := []rune(s)
	for i, r := range rs {
		if l.peek(i) != r {
			return false
		}
	}
	return true
}

// lexString reads a whole double-quoted string literal (including simple ${...} templates) as one
// token; the parser splits its text back into literal spans and template entries.
func (l *lexer) lexString() lexToken {
	line := l.line
	start := l.pos
	l.advance() // opening quote
	for l.cur() != -1 && l.cur() != '"' {
		if l.cur() == '\\' {
			l.advance()
			if l.cur() != -1 {
				l.advance()
			}
			continue
		}
		if l.cur() == '$' && l.peek(1) == '{' {
			depth := 0
			l.advance()
			l.advance()
			depth++
			for l.cur() != -1 && depth > 0 {
				if l.cur() == '{' {
					depth++
				} else if l.cur() == '}' {
					depth--
					if depth == 0 {
						l.advance()
						break
					}
				}
				l.advance()
			}
			continue
		}
		l.advance()
	}
	if l.cur() == '"' {
		l.advance()
	}
	return lexToken{kind: tokStringLiteral, text: string(l.src[start:l.pos]), line: line}
}

func (l *lexer) lexKDoc() lexToken {
	line := l.line
	l.advance()
	l.advance()
	l.advance() // "/**"
	start := l.pos
	for l.cur() != -1 && !(l.cur() == '*' && l.peek(1) == '/') {
		l.advance()
	}
	body := string(l.src[start:l.pos])
	if l.cur() != -1 {
		l.advance()
		l.advance()
	}
	return lexToken{kind: tokKDoc, text: stripDocBody(body), line: line}
}

func (l *lexer) lexBlockComment() lexToken {
	line := l.line
	l.advance()
	l.advance()
	start := l.pos
	for l.cur() != -1 && !(l.cur() == '*' && l.peek(1) == '/') {
		l.advance()
	}
	body := string(l.src[start:l.pos])
	if l.cur() != -1 {
		l.advance()
		l.advance()
	}
	return lexToken{kind: tokBlockComment, text: stripDocBody(body), line: line}
}

func (l *lexer) lexLineComment() lexToken {
	line := l.line
	l.advance()
	l.advance()
	start := l.pos
	for l.cur() != -1 && l.cur() != '\n' {
		l.advance()
	}
	return lexToken{kind: tokLineComment, text: strings.TrimSpace(string(l.src[start:l.pos])), line: line}
}

// stripDocBody removes the leading " * " (or " *") continuation marker from each line of a
// KDoc/block comment body, returning the joined, newline-separated prose the [kdoc] package and
// scanner expect.
func stripDocBody(body string) string {
	lines := strings.Split(body, "\n")
	var out []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "*")
		trimmed = strings.TrimPrefix(trimmed, " ")
		if i == 0 && trimmed == "" && len(lines) > 1 {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
