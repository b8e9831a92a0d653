package filtrex

import (
	"fmt"
)

// addParseError records the first parse failure only; later failures are
// almost always fallout from the first.
func (p *parser) addParseError(tok Token, msg string, expected []TokenType) {
	if p.err != nil {
		return
	}
	labels := make([]string, 0, len(expected))
	seen := make(map[TokenType]struct{}, len(expected))
	for _, tt := range expected {
		if _, dup := seen[tt]; dup {
			continue
		}
		seen[tt] = struct{}{}
		labels = append(labels, tokenLabel(tt))
	}
	if len(labels) == 0 {
		labels = nil
	}
	p.err = &ParseError{
		Pos:      tok.Pos,
		Token:    tok,
		Expected: labels,
		Message:  msg,
		source:   p.source,
	}
}

func (p *parser) errorUnexpected(tok Token, expected []TokenType) {
	p.addParseError(tok, "unexpected "+describeToken(tok), expected)
}

func (p *parser) errorDepth(tok Token) {
	p.addParseError(tok, fmt.Sprintf("expression nesting exceeds maximum depth of %d", p.maxDepth), nil)
}

func describeToken(tok Token) string {
	switch tok.Type {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number " + tok.Literal
	case tokenString:
		return "string " + encodeQuoted('"', tok.Literal)
	case tokenSymbol:
		return "symbol " + renderSymbol(tok.Literal, tok.Quote)
	default:
		return tokenLabel(tok.Type)
	}
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenSymbol:
		return "symbol"
	case tokenAnd:
		return "'and'"
	case tokenOr:
		return "'or'"
	case tokenNot:
		return "'not'"
	case tokenIn:
		return "'in'"
	case tokenNotIn:
		return "'not in'"
	case tokenOf:
		return "'of'"
	case tokenIf:
		return "'if'"
	case tokenThen:
		return "'then'"
	case tokenElse:
		return "'else'"
	default:
		return fmt.Sprintf("%q", string(tt))
	}
}
