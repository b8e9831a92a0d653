package filtrex

// Binding power, lowest first. if/then/else binds loosest; "of" binds
// tightest and only ever follows a symbol.
const (
	lowestPrec = iota
	precOr
	precAnd
	precIn
	precRelation
	precSum
	precProduct
	precPrefix
	precPower
	precOf
)

var precedences = map[TokenType]int{
	tokenOr:       precOr,
	tokenAnd:      precAnd,
	tokenIn:       precIn,
	tokenNotIn:    precIn,
	tokenEQ:       precRelation,
	tokenNotEQ:    precRelation,
	tokenMatch:    precRelation,
	tokenLT:       precRelation,
	tokenLTE:      precRelation,
	tokenGT:       precRelation,
	tokenGTE:      precRelation,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenAsterisk: precProduct,
	tokenSlash:    precProduct,
	tokenPercent:  precProduct,
	tokenCaret:    precPower,
}

// operandStarters and continuations are listed in the order they appear in
// parse error messages.
var operandStarters = []TokenType{
	tokenNumber, tokenString, tokenSymbol, tokenLParen, tokenMinus, tokenNot, tokenIf,
}

var continuations = []TokenType{
	tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenPercent, tokenCaret,
	tokenEQ, tokenNotEQ, tokenMatch, tokenLT, tokenLTE, tokenGT, tokenGTE,
	tokenAnd, tokenOr, tokenIn, tokenNotIn,
}

// continuationsAfter lists what may follow the operand ending at last, then
// extra. A bare symbol can still turn into a call or a property read.
func continuationsAfter(last Token, extra ...TokenType) []TokenType {
	expected := make([]TokenType, 0, len(continuations)+2+len(extra))
	expected = append(expected, continuations...)
	if last.Type == tokenSymbol {
		expected = append(expected, tokenLParen, tokenOf)
	}
	return append(expected, extra...)
}

func (p *parser) curPrecedence() int {
	if prec, ok := p.g.precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) peekPrecedence() int {
	if prec, ok := p.g.precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}
