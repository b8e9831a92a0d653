package filtrex

import (
	"errors"
	"fmt"
	"strings"
)

// LexError reports source text that matches no lexical rule, such as an
// unterminated literal or an invalid escape sequence.
type LexError struct {
	Pos     Position
	Message string
	source  string
	width   int
}

func (e *LexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lex error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	if frame := codeFrame(e.source, e.Pos, e.width); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// ParseError reports a token the grammar does not accept at its position.
// Expected lists the tokens that would have been accepted instead.
type ParseError struct {
	Pos      Position
	Token    Token
	Expected []string
	Message  string
	source   string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, " (expected %s)", joinExpected(e.Expected))
	}
	if frame := codeFrame(e.source, e.Pos, e.Token.Width); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func joinExpected(expected []string) string {
	switch len(expected) {
	case 1:
		return expected[0]
	case 2:
		return expected[0] + " or " + expected[1]
	default:
		return "one of " + strings.Join(expected, ", ")
	}
}

// TypeError reports invalid compile options or an operand that failed
// coercion during evaluation.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return "TypeError: " + e.Message
}

// ReferenceError reports an unknown property or function.
type ReferenceError struct {
	Name    string
	Message string
}

func (e *ReferenceError) Error() string {
	return "ReferenceError: " + e.Message
}

func typeErrorf(format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

func unknownProperty(name string) error {
	return &ReferenceError{Name: name, Message: fmt.Sprintf("Property %q does not exist.", name)}
}

func unknownFunction(name string) error {
	return &ReferenceError{Name: name, Message: fmt.Sprintf("Unknown function: %s()", name)}
}

// ErrorKind names the category of err: "LexError", "ParseError",
// "TypeError", "ReferenceError", or "" for anything else.
func ErrorKind(err error) string {
	var (
		lexErr   *LexError
		parseErr *ParseError
		typeErr  *TypeError
		refErr   *ReferenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &lexErr):
		return "LexError"
	case errors.As(err, &parseErr):
		return "ParseError"
	case errors.As(err, &typeErr):
		return "TypeError"
	case errors.As(err, &refErr):
		return "ReferenceError"
	default:
		return ""
	}
}
