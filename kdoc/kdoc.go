// Package kdoc formats KDoc-style documentation comments: reflowing prose to a target width while
// preserving paragraph breaks, fenced code blocks, list items, and `@tag` sections. A `@tag`
// section is recognized only when the tag opens a blank-line-separated paragraph; a tag line that
// follows other text within the same paragraph is reflowed together with that text.
package kdoc

import (
	"strings"

	"github.com/bracefmt/bracefmt/ir"
)

// Format reformats the body of a KDoc comment (the text between /** and */, already stripped of
// leading " * " continuation markers) to fit within width, returning the complete comment
// including its /** */ delimiters. When the reformatted body is a single line that fits within
// width (or width is not positive), the comment collapses to a single-line "/** ... */" form;
// anything else takes the multi-line form with a " * " prefix per line and a bare " *" line
// between paragraphs.
func Format(body string, width int) string {
	paragraphs := splitParagraphs(body)
	var blocks []string
	for i, para := range paragraphs {
		if i > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks, formatParagraph(para, width)...)
	}

	if len(blocks) == 0 {
		return "/** */"
	}
	if len(blocks) == 1 && !strings.Contains(blocks[0], "\n") {
		single := "/** " + blocks[0] + " */"
		if width <= 0 || displayWidth(single) <= width {
			return single
		}
	}

	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, block := range blocks {
		for _, line := range strings.Split(block, "\n") {
			sb.WriteString(" *")
			if line != "" {
				sb.WriteString(" ")
				sb.WriteString(line)
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString(" */")
	return sb.String()
}

func displayWidth(s string) int {
	return ir.DisplayWidth(s)
}

// splitParagraphs splits on blank lines, keeping fenced code blocks (delimited by lines starting
// with "```") intact as a single paragraph regardless of blank lines inside them.
func splitParagraphs(body string) []string {
	lines := strings.Split(body, "\n")
	var paragraphs []string
	var current []string
	inFence := false

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if !inFence {
				flush()
			}
			inFence = !inFence
			current = append(current, line)
			if !inFence {
				flush()
			}
			continue
		}
		if inFence {
			current = append(current, line)
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}

// formatParagraph renders one paragraph (already newline-joined, fences preserved verbatim) into
// one or more output blocks, each a '\n'-joined string of its own wrapped lines; a list paragraph
// yields one block per item. Format itself inserts the blank " *" line between paragraphs, as an
// empty block.
func formatParagraph(para string, width int) []string {
	if strings.HasPrefix(strings.TrimSpace(para), "```") {
		return []string{para}
	}
	if isTagParagraph(para) {
		return []string{wrapTagParagraph(para, width)}
	}
	if isListParagraph(para) {
		return wrapListParagraph(para, width)
	}
	return []string{wrapProse(joinLines(para), width)}
}

func joinLines(s string) string {
	fields := strings.Fields(strings.ReplaceAll(s, "\n", " "))
	return strings.Join(fields, " ")
}

func isTagParagraph(para string) bool {
	trimmed := strings.TrimSpace(para)
	return strings.HasPrefix(trimmed, "@param ") ||
		strings.HasPrefix(trimmed, "@property ") ||
		strings.HasPrefix(trimmed, "@return") ||
		strings.HasPrefix(trimmed, "@throws ") ||
		strings.HasPrefix(trimmed, "@see ")
}

func isListParagraph(para string) bool {
	for _, line := range strings.Split(para, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || isNumberedBullet(trimmed) {
			return true
		}
	}
	return false
}

func isNumberedBullet(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '.'
}

// wrapTagParagraph wraps an @tag paragraph's prose with a 4-space continuation indent on every
// line after the first, keeping the tag's own first line unindented.
func wrapTagParagraph(para string, width int) string {
	joined := joinLines(para)
	wrapped := wrapProseIndented(joined, width, "    ")
	return wrapped
}

// wrapListParagraph preserves one output line per input bullet line (list items are never
// reflowed into each other), wrapping each bullet's own prose if it alone exceeds width.
func wrapListParagraph(para string, width int) []string {
	var out []string
	for _, line := range strings.Split(para, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, wrapProseIndented(trimmed, width, "  "))
	}
	return out
}

// wrapProse reflows s to width at word boundaries, never breaking a single no-whitespace run (such
// as a URL) even if it alone exceeds width.
func wrapProse(s string, width int) string {
	return wrapProseIndented(s, width, "")
}

func wrapProseIndented(s string, width int, continuationIndent string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	var current strings.Builder
	currentWidth := 0
	indentWidth := displayWidth(continuationIndent)

	for _, word := range words {
		wordWidth := displayWidth(word)
		prefix := 0
		if current.Len() > 0 {
			prefix = 1
		}
		limit := width
		if len(lines) > 0 {
			limit -= indentWidth
		}
		if width > 0 && current.Len() > 0 && currentWidth+prefix+wordWidth > limit {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	for i := 1; i < len(lines); i++ {
		lines[i] = continuationIndent + lines[i]
	}
	return strings.Join(lines, "\n")
}
