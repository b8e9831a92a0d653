package filtrex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	next   int

	line   int
	column int

	ch  rune
	eof bool
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.eof {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.offset = l.next
	l.column++

	if l.next >= len(l.input) {
		l.ch = 0
		l.eof = true
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.next:])
	l.next += w
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *lexer) position() Position {
	return Position{Offset: l.offset, Line: l.line, Column: l.column}
}

// NextToken returns the next token. Unrecognised input yields a tokenIllegal
// whose Literal is the error message.
func (l *lexer) NextToken() Token {
	tok := l.scan()
	tok.Width = l.offset - tok.Pos.Offset
	return tok
}

func (l *lexer) scan() Token {
	l.skipWhitespace()

	pos := l.position()
	if l.eof {
		return Token{Type: tokenEOF, Pos: pos}
	}

	switch l.ch {
	case '+':
		return l.single(tokenPlus, pos)
	case '-':
		return l.single(tokenMinus, pos)
	case '*':
		return l.single(tokenAsterisk, pos)
	case '/':
		return l.single(tokenSlash, pos)
	case '%':
		return l.single(tokenPercent, pos)
	case '^':
		return l.single(tokenCaret, pos)
	case '(':
		return l.single(tokenLParen, pos)
	case ')':
		return l.single(tokenRParen, pos)
	case ',':
		return l.single(tokenComma, pos)
	case '=':
		return l.pair('=', tokenEQ, pos)
	case '!':
		return l.pair('=', tokenNotEQ, pos)
	case '~':
		return l.pair('=', tokenMatch, pos)
	case '<':
		if l.peekRune() == '=' {
			return l.pair('=', tokenLTE, pos)
		}
		return l.single(tokenLT, pos)
	case '>':
		if l.peekRune() == '=' {
			return l.pair('=', tokenGTE, pos)
		}
		return l.single(tokenGT, pos)
	case '\'':
		return l.readQuoted('\'', tokenSymbol, QuoteSingle, pos)
	case '"':
		return l.readQuoted('"', tokenString, QuoteDouble, pos)
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(pos)
	case isSymbolStart(l.ch):
		return l.readWord(pos)
	default:
		ch := l.ch
		l.readRune()
		return illegal(pos, fmt.Sprintf("unexpected character %q", ch))
	}
}

func (l *lexer) single(tt TokenType, pos Position) Token {
	l.readRune()
	return Token{Type: tt, Literal: string(tt), Pos: pos}
}

func (l *lexer) pair(second rune, tt TokenType, pos Position) Token {
	first := l.ch
	if l.peekRune() != second {
		l.readRune()
		return illegal(pos, fmt.Sprintf("unexpected character %q", first))
	}
	l.readRune()
	l.readRune()
	return Token{Type: tt, Literal: string(tt), Pos: pos}
}

func illegal(pos Position, msg string) Token {
	return Token{Type: tokenIllegal, Literal: msg, Pos: pos}
}

func (l *lexer) skipWhitespace() {
	for !l.eof && isSpace(l.ch) {
		l.readRune()
	}
}

// readNumber matches [0-9]+(\.[0-9]+)? and rejects a match that is followed
// by another digit or dot, so "1." and "1.2.3" never lex as numbers.
func (l *lexer) readNumber(pos Position) Token {
	start := l.offset
	for isDigit(l.ch) {
		l.readRune()
	}
	if l.ch == '.' && isDigit(l.peekRune()) {
		l.readRune()
		for isDigit(l.ch) {
			l.readRune()
		}
	}
	literal := l.input[start:l.offset]
	if l.ch == '.' {
		return illegal(pos, fmt.Sprintf("malformed number %q", literal+"."))
	}
	return Token{Type: tokenNumber, Literal: literal, Pos: pos}
}

// readWord reads a bare symbol or keyword. Keywords only match when the whole
// word is the keyword; "not" followed by whitespace and "in" lexes as notIn.
func (l *lexer) readWord(pos Position) Token {
	start := l.offset
	for isSymbolRune(l.ch) {
		l.readRune()
	}
	word := l.input[start:l.offset]

	tt, ok := lookupKeyword(word)
	if !ok {
		return Token{Type: tokenSymbol, Literal: word, Pos: pos, Quote: QuoteNone}
	}
	if tt == tokenNot && l.skipNotIn() {
		return Token{Type: tokenNotIn, Literal: "not in", Pos: pos}
	}
	return Token{Type: tt, Literal: word, Pos: pos}
}

// skipNotIn consumes `\s+in` when it directly follows "not" and is not the
// prefix of a longer symbol.
func (l *lexer) skipNotIn() bool {
	rest := l.input[l.offset:]
	trimmed := strings.TrimLeft(rest, " \t\r\n\f\v")
	if len(trimmed) == len(rest) || !strings.HasPrefix(trimmed, "in") {
		return false
	}
	after := trimmed[2:]
	if after != "" {
		r, _ := utf8.DecodeRuneInString(after)
		if isSymbolRune(r) {
			return false
		}
	}
	end := l.offset + (len(rest) - len(after))
	for !l.eof && l.offset < end {
		l.readRune()
	}
	return true
}

// readQuoted scans a quoted literal and decodes it with the shared escape
// grammar.
func (l *lexer) readQuoted(quote rune, tt TokenType, q Quote, pos Position) Token {
	start := l.offset
	l.readRune()
	for {
		if l.eof {
			return illegal(pos, "unterminated "+quoteLabel(q))
		}
		switch l.ch {
		case '\\':
			l.readRune()
			if l.eof {
				return illegal(pos, "unterminated "+quoteLabel(q))
			}
			l.readRune()
			continue
		case quote:
			l.readRune()
			raw := l.input[start:l.offset]
			decoded, err := decodeQuoted(quote, raw)
			if err != nil {
				return illegal(pos, err.Error())
			}
			return Token{Type: tt, Literal: decoded, Pos: pos, Quote: q}
		}
		l.readRune()
	}
}

func quoteLabel(q Quote) string {
	if q == QuoteSingle {
		return "quoted symbol"
	}
	return "string literal"
}

// decodeQuoted decodes a raw literal including its surrounding quotes. Only
// backslash and the matching quote may be escaped.
func decodeQuoted(quote rune, raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("literal %s is not enclosed in %c", raw, quote)
	}
	first, _ := utf8.DecodeRuneInString(raw)
	last, _ := utf8.DecodeLastRuneInString(raw)
	if first != quote || last != quote {
		return "", fmt.Errorf("literal %s is not enclosed in %c", raw, quote)
	}

	body := raw[1 : len(raw)-1]
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); {
		r, w := utf8.DecodeRuneInString(body[i:])
		i += w
		switch r {
		case '\\':
			if i >= len(body) {
				return "", fmt.Errorf("unescaped backslash at end of literal")
			}
			esc, ew := utf8.DecodeRuneInString(body[i:])
			i += ew
			if esc != '\\' && esc != quote {
				return "", fmt.Errorf("invalid escape sequence \\%c", esc)
			}
			sb.WriteRune(esc)
		case quote:
			return "", fmt.Errorf("literal contains unescaped %c", quote)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

// encodeQuoted is the inverse of decodeQuoted.
func encodeQuoted(quote rune, s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteRune(quote)
	for _, r := range s {
		if r == '\\' || r == quote {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteRune(quote)
	return sb.String()
}

// tokenize lexes the full input so lexical errors are reported before any
// parse error.
func tokenize(input string) ([]Token, error) {
	l := newLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == tokenIllegal {
			return nil, &LexError{Pos: tok.Pos, Message: tok.Literal, source: input, width: tok.Width}
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, nil
		}
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSymbolStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '$' || r == '_'
}

func isSymbolRune(r rune) bool {
	return isSymbolStart(r) || isDigit(r) || r == '.'
}

// isBareSymbol reports whether name can be written without quotes.
func isBareSymbol(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := lookupKeyword(name); ok {
		return false
	}
	for i, r := range name {
		if i == 0 && !isSymbolStart(r) {
			return false
		}
		if !isSymbolRune(r) {
			return false
		}
	}
	return true
}
