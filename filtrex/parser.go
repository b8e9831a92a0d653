package filtrex

import (
	"strconv"
	"sync"
)

type (
	prefixParseFn func(*parser) Node
	infixParseFn  func(*parser, Node) Node
)

// grammar holds the parse tables. It is built once per process and only read
// afterwards, so every parser can share it.
type grammar struct {
	prefixFns   map[TokenType]prefixParseFn
	infixFns    map[TokenType]infixParseFn
	precedences map[TokenType]int
}

var sharedGrammar = sync.OnceValue(buildGrammar)

func buildGrammar() *grammar {
	g := &grammar{
		prefixFns:   make(map[TokenType]prefixParseFn),
		infixFns:    make(map[TokenType]infixParseFn),
		precedences: precedences,
	}

	g.prefixFns[tokenNumber] = (*parser).parseNumberLiteral
	g.prefixFns[tokenString] = (*parser).parseStringLiteral
	g.prefixFns[tokenSymbol] = (*parser).parseSymbol
	g.prefixFns[tokenLParen] = (*parser).parseGroupedExpression
	g.prefixFns[tokenMinus] = (*parser).parsePrefixExpression
	g.prefixFns[tokenNot] = (*parser).parsePrefixExpression
	g.prefixFns[tokenIf] = (*parser).parseIfExpression

	for _, tt := range []TokenType{tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenPercent} {
		g.infixFns[tt] = (*parser).parseInfixExpression
	}
	g.infixFns[tokenCaret] = (*parser).parsePowerExpression
	for _, tt := range []TokenType{tokenEQ, tokenNotEQ, tokenMatch, tokenLT, tokenLTE, tokenGT, tokenGTE} {
		g.infixFns[tt] = (*parser).parseRelation
	}
	g.infixFns[tokenAnd] = (*parser).parseLogicalExpression
	g.infixFns[tokenOr] = (*parser).parseLogicalExpression
	g.infixFns[tokenIn] = (*parser).parseMembershipExpression
	g.infixFns[tokenNotIn] = (*parser).parseMembershipExpression

	return g
}

type parser struct {
	g      *grammar
	source string
	tokens []Token
	next   int

	curToken  Token
	peekToken Token

	depth    int
	maxDepth int

	err *ParseError
}

func newParser(g *grammar, source string, tokens []Token, maxDepth int) *parser {
	p := &parser{g: g, source: source, tokens: tokens, maxDepth: maxDepth}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	if p.next < len(p.tokens) {
		p.peekToken = p.tokens[p.next]
		p.next++
	}
}

// parseSource lexes and parses a complete expression.
func parseSource(g *grammar, source string, maxDepth int) (Node, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := newParser(g, source, tokens, maxDepth)
	return p.ParseExpression()
}

func (p *parser) ParseExpression() (Node, error) {
	expr := p.parseExpression(lowestPrec)
	if p.err == nil && p.peekToken.Type != tokenEOF {
		p.errorUnexpected(p.peekToken, continuationsAfter(p.curToken, tokenEOF))
	}
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

func (p *parser) parseExpression(precedence int) Node {
	if p.err != nil {
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		p.errorDepth(p.curToken)
		return nil
	}

	prefix := p.g.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken, operandStarters)
		return nil
	}

	left := prefix(p)
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.g.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(p, left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *parser) parseNumberLiteral() Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken, "invalid number literal", nil)
		return nil
	}
	return &NumberLit{Value: value, Raw: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Node {
	return &StringLit{Value: p.curToken.Literal, position: p.curToken.Pos}
}

// parseSymbol handles the three symbol forms: a record reference, a call
// `name(args)` and a property read `name of expr`.
func (p *parser) parseSymbol() Node {
	tok := p.curToken
	switch p.peekToken.Type {
	case tokenLParen:
		p.nextToken()
		return p.parseCallExpression(tok)
	case tokenOf:
		p.nextToken()
		p.nextToken()
		object := p.parseExpression(precOf - 1)
		if object == nil {
			return nil
		}
		return &OfExpr{Name: tok.Literal, Quote: tok.Quote, Object: object, position: tok.Pos}
	default:
		return &SymbolRef{Name: tok.Literal, Quote: tok.Quote, position: tok.Pos}
	}
}

func (p *parser) parseCallExpression(name Token) Node {
	call := &CallExpr{Name: name.Literal, Quote: name.Quote, Args: []Node{}, position: name.Pos}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return call
	}

	p.nextToken()
	args, ok := p.parseExpressionList()
	if !ok {
		return nil
	}
	call.Args = args
	return call
}

// parseGroupedExpression parses `( e )` or the list literal `( e, e, ... )`.
func (p *parser) parseGroupedExpression() Node {
	pos := p.curToken.Pos
	p.nextToken()
	elements, ok := p.parseExpressionList()
	if !ok {
		return nil
	}
	if len(elements) == 1 {
		return elements[0]
	}
	return &ListExpr{Elements: elements, position: pos}
}

// parseExpressionList parses comma separated expressions up to and
// including the closing parenthesis.
func (p *parser) parseExpressionList() ([]Node, bool) {
	first := p.parseExpression(lowestPrec)
	if first == nil {
		return nil, false
	}
	elements := []Node{first}
	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		el := p.parseExpression(lowestPrec)
		if el == nil {
			return nil, false
		}
		elements = append(elements, el)
	}
	if !p.expectPeek(tokenRParen, tokenComma) {
		return nil, false
	}
	return elements, true
}

func (p *parser) parsePrefixExpression() Node {
	tok := p.curToken
	operator := "-"
	if tok.Type == tokenNot {
		operator = "not"
	}
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: operator, Right: right, position: tok.Pos}
}

func (p *parser) parseIfExpression() Node {
	pos := p.curToken.Pos

	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil || !p.expectPeek(tokenThen) {
		return nil
	}

	p.nextToken()
	consequent := p.parseExpression(lowestPrec)
	if consequent == nil || !p.expectPeek(tokenElse) {
		return nil
	}

	p.nextToken()
	alternate := p.parseExpression(lowestPrec)
	if alternate == nil {
		return nil
	}

	return &IfExpr{Condition: condition, Consequent: consequent, Alternate: alternate, position: pos}
}

func (p *parser) parseInfixExpression(left Node) Node {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Operator: string(tok.Type), Left: left, Right: right, position: tok.Pos}
}

// parsePowerExpression is right associative: 2 ^ 3 ^ 2 is 2 ^ (3 ^ 2).
func (p *parser) parsePowerExpression(left Node) Node {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(precPower - 1)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Operator: string(tok.Type), Left: left, Right: right, position: tok.Pos}
}

func (p *parser) parseLogicalExpression(left Node) Node {
	tok := p.curToken
	operator := "and"
	if tok.Type == tokenOr {
		operator = "or"
	}
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &LogicalExpr{Operator: operator, Left: left, Right: right, position: tok.Pos}
}

func (p *parser) parseMembershipExpression(left Node) Node {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(precIn)
	if right == nil {
		return nil
	}
	return &MembershipExpr{Negated: tok.Type == tokenNotIn, Left: left, Right: right, position: tok.Pos}
}

// parseRelation collects a whole comparison chain. Each operand is parsed
// at relational precedence, so the loop sees the next comparison operator
// instead of a nested relation.
func (p *parser) parseRelation(left Node) Node {
	rel := &RelationExpr{Operands: []Node{left}, position: left.Pos()}
	for {
		operator := string(p.curToken.Type)
		p.nextToken()
		right := p.parseExpression(precRelation)
		if right == nil {
			return nil
		}
		rel.Operands = append(rel.Operands, right)
		rel.Operators = append(rel.Operators, operator)

		if !isRelational(p.peekToken.Type) {
			return rel
		}
		p.nextToken()
	}
}

// expectPeek advances when the next token is tt. On failure alternatives are
// listed alongside tt as acceptable tokens.
func (p *parser) expectPeek(tt TokenType, alternatives ...TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorUnexpected(p.peekToken, continuationsAfter(p.curToken, append([]TokenType{tt}, alternatives...)...))
	return false
}
