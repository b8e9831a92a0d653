package filtrex

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenNumber TokenType = "NUMBER"
	tokenSymbol TokenType = "SYMBOL"
	tokenString TokenType = "STRING"

	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenPercent  TokenType = "%"
	tokenCaret    TokenType = "^"
	tokenLParen   TokenType = "("
	tokenRParen   TokenType = ")"
	tokenComma    TokenType = ","
	tokenEQ       TokenType = "=="
	tokenNotEQ    TokenType = "!="
	tokenMatch    TokenType = "~="
	tokenLT       TokenType = "<"
	tokenLTE      TokenType = "<="
	tokenGT       TokenType = ">"
	tokenGTE      TokenType = ">="

	tokenAnd   TokenType = "AND"
	tokenOr    TokenType = "OR"
	tokenNot   TokenType = "NOT"
	tokenIn    TokenType = "IN"
	tokenNotIn TokenType = "NOTIN"
	tokenOf    TokenType = "OF"
	tokenIf    TokenType = "IF"
	tokenThen  TokenType = "THEN"
	tokenElse  TokenType = "ELSE"
)

// Quote records how a symbol or string literal was written in the source.
type Quote int

const (
	// QuoteNone marks a bare identifier such as order.total.
	QuoteNone Quote = iota
	// QuoteSingle marks a single-quoted symbol such as 'first name'.
	QuoteSingle
	// QuoteDouble marks a double-quoted string literal.
	QuoteDouble
)

// Token captures lexical information for the parser. For symbols and
// strings Literal holds the decoded text, never the raw source slice;
// Width is the number of source bytes the token covers.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	Quote   Quote
	Width   int
}

// Position identifies a location in the expression source. Offset is a
// byte offset; Line and Column are 1-based and count runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

var keywords = map[string]TokenType{
	"and":  tokenAnd,
	"or":   tokenOr,
	"not":  tokenNot,
	"in":   tokenIn,
	"of":   tokenOf,
	"if":   tokenIf,
	"then": tokenThen,
	"else": tokenElse,
}

func lookupKeyword(word string) (TokenType, bool) {
	tt, ok := keywords[word]
	return tt, ok
}

func isRelational(tt TokenType) bool {
	switch tt {
	case tokenEQ, tokenNotEQ, tokenMatch, tokenLT, tokenLTE, tokenGT, tokenGTE:
		return true
	default:
		return false
	}
}
