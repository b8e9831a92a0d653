package filtrex

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// codeFrame renders the source line holding pos with the offending token
// underlined:
//
//	2 |   * b
//	  |   ^
//
// The line is located by byte offset. width is the token's size in source
// bytes; the underline is at least one rune and stops at the end of the line.
func codeFrame(source string, pos Position, width int) string {
	if source == "" || pos.Offset < 0 || pos.Offset > len(source) {
		return ""
	}

	start := strings.LastIndexByte(source[:pos.Offset], '\n') + 1
	end := len(source)
	if i := strings.IndexByte(source[pos.Offset:], '\n'); i >= 0 {
		end = pos.Offset + i
	}
	line := strings.TrimRight(source[start:end], "\r")

	lead := utf8.RuneCountInString(source[start:pos.Offset])
	span := 1
	if width > 0 {
		tokenEnd := min(pos.Offset+width, start+len(line))
		if tokenEnd > pos.Offset {
			span = utf8.RuneCountInString(source[pos.Offset:tokenEnd])
		}
	}

	label := strconv.Itoa(pos.Line)
	gutter := strings.Repeat(" ", len(label))

	var b strings.Builder
	b.WriteString(label + " | " + line + "\n")
	b.WriteString(gutter + " | " + strings.Repeat(" ", lead) + "^" + strings.Repeat("~", span-1))
	return b.String()
}
