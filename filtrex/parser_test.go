package filtrex

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, expr string) Node {
	t.Helper()
	node, err := Parse(expr)
	require.NoError(t, err, "parse %q", expr)
	return node
}

func requireParseError(t *testing.T, err error) *ParseError {
	t.Helper()
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
	return parseErr
}

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"a - b - c", "((a - b) - c)"},
		{"-x ^ 2", "(-(x ^ 2))"},
		{"- - 1", "(-(-1))"},
		{"not a and b", "((not a) and b)"},
		{"a or b and c", "(a or (b and c))"},
		{"a + 1 < b * 2", "((a + 1) < (b * 2))"},
		{"x % 2 == 0 and y", "(((x % 2) == 0) and y)"},
		{"a == b in c", "((a == b) in c)"},
		{"x in (1, 2) or y", "((x in (1, 2)) or y)"},
		{"x not in (1, 2)", "(x not in (1, 2))"},
		{"a ~= \"^x\"", "(a ~= \"^x\")"},
		{"(1)", "1"},
		{"((a + b)) * c", "((a + b) * c)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.input).String())
		})
	}
}

func TestParserRelationChains(t *testing.T) {
	node := mustParse(t, "a < b <= c > d")
	rel, ok := node.(*RelationExpr)
	require.True(t, ok, "expected RelationExpr, got %T", node)
	assert.Len(t, rel.Operands, 4)
	assert.Equal(t, []string{"<", "<=", ">"}, rel.Operators)
	assert.Equal(t, "(a < b <= c > d)", node.String())

	single, ok := mustParse(t, "a == b").(*RelationExpr)
	require.True(t, ok)
	assert.Len(t, single.Operators, 1)

	assert.Equal(t, "((a < b) and (b < c))", mustParse(t, "a < b and b < c").String())
	assert.Equal(t, "((a + 1) < (b - 1) < c)", mustParse(t, "a + 1 < b - 1 < c").String())
}

func TestParserOfAndCalls(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a of b of c", "(a of (b of c))"},
		{"a.b of c", "(a.b of c)"},
		{"hat of obj ^ 2", "((hat of obj) ^ 2)"},
		{"'first name' of person", "('first name' of person)"},
		{"max(a, b + 1)", "max(a, (b + 1))"},
		{"f()", "f()"},
		{"f((1, 2), 3)", "f((1, 2), 3)"},
		{"'and' + 1", "('and' + 1)"},
		{"'first name' == \"x\"", "('first name' == \"x\")"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.input).String())
		})
	}

	call, ok := mustParse(t, "f()").(*CallExpr)
	require.True(t, ok)
	assert.Empty(t, call.Args)
}

func TestParserConditional(t *testing.T) {
	assert.Equal(t, "(if a then b else (c + 1))", mustParse(t, "if a then b else c + 1").String())
	assert.Equal(t, "(1 + (if a then 2 else (3 + 4)))", mustParse(t, "1 + if a then 2 else 3 + 4").String())
	assert.Equal(t,
		"(if (x > 1) then (if y then 1 else 2) else 3)",
		mustParse(t, "if x > 1 then if y then 1 else 2 else 3").String(),
	)
}

func TestParserLists(t *testing.T) {
	node := mustParse(t, `(1, "two", three)`)
	list, ok := node.(*ListExpr)
	require.True(t, ok, "expected ListExpr, got %T", node)
	require.Len(t, list.Elements, 3)
	assert.IsType(t, &NumberLit{}, list.Elements[0])
	assert.IsType(t, &StringLit{}, list.Elements[1])
	assert.IsType(t, &SymbolRef{}, list.Elements[2])
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty input", "", []string{"number", "string", "symbol", `"("`, `"-"`, "'not'", "'if'"}},
		{"dangling operator", "1 +", []string{"number", "symbol"}},
		{"unclosed list", "(1, 2", []string{`")"`, `","`}},
		{"empty parens", "()", []string{"number"}},
		{"adjacent operands", "1 2", []string{"end of input", `"+"`}},
		{"missing else", "if a then b", []string{"'else'"}},
		{"missing then", "if a b else c", []string{"'then'"}},
		{"of without operand", "a of", []string{"symbol"}},
		{"stray closer", "a )", []string{"end of input"}},
		{"unclosed call", "f(1", []string{`")"`}},
		{"adjacent symbols", "a b", []string{"end of input", `"("`, "'of'", `"+"`}},
		{"symbol in unclosed list", "(a, b c", []string{`")"`, `","`, `"("`, "'of'"}},
		{"symbol before then", "if a b", []string{"'then'", `"("`, "'of'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			parseErr := requireParseError(t, err)
			assert.Equal(t, "ParseError", ErrorKind(err))
			for _, want := range tt.expected {
				assert.Contains(t, parseErr.Expected, want)
			}
		})
	}
}

func TestExpectedAfterNonSymbolOmitsCallAndOf(t *testing.T) {
	_, err := Parse("1 2")
	parseErr := requireParseError(t, err)
	assert.NotContains(t, parseErr.Expected, `"("`)
	assert.NotContains(t, parseErr.Expected, "'of'")

	_, err = Parse("a b")
	assert.Contains(t, err.Error(), `"(", 'of'`)
}

func TestParseErrorReportsOffendingToken(t *testing.T) {
	_, err := Parse("a +\n  * b")
	parseErr := requireParseError(t, err)
	assert.Equal(t, tokenAsterisk, parseErr.Token.Type)
	assert.Equal(t, 2, parseErr.Pos.Line)
	assert.Equal(t, 3, parseErr.Pos.Column)
	assert.Contains(t, err.Error(), "parse error at 2:3: unexpected \"*\"")
	assert.Contains(t, err.Error(), "  * b")

	_, err = Parse("1 2")
	parseErr = requireParseError(t, err)
	assert.Equal(t, "2", parseErr.Token.Literal)
	assert.Equal(t, "unexpected number 2", parseErr.Message)
}

func TestLexErrorsWinOverParseErrors(t *testing.T) {
	_, err := Parse("1 + ) #")
	var lexErr *LexError
	assert.True(t, errors.As(err, &lexErr), "expected LexError, got %v", err)
}

func TestParserDepthLimit(t *testing.T) {
	nested := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)

	engine := MustNewEngine(Config{MaxDepth: 10})
	_, err := engine.Parse(nested)
	parseErr := requireParseError(t, err)
	assert.Contains(t, parseErr.Message, "maximum depth of 10")

	_, err = engine.Parse(strings.Repeat("-", 20) + "1")
	requireParseError(t, err)

	unlimited := MustNewEngine(Config{MaxDepth: -1})
	deep := strings.Repeat("(", 2000) + "1" + strings.Repeat(")", 2000)
	_, err = unlimited.Parse(deep)
	assert.NoError(t, err)

	_, err = MustNewEngine(Config{}).Parse(deep)
	requireParseError(t, err)
}

func TestParserSourceLimit(t *testing.T) {
	engine := MustNewEngine(Config{MaxSourceBytes: 8})
	_, err := engine.Parse("1 + 2 + 3 + 4")
	parseErr := requireParseError(t, err)
	assert.Contains(t, parseErr.Message, "exceeding the limit of 8")

	_, err = engine.Parse("1 + 2")
	assert.NoError(t, err)

	_, err = MustNewEngine(Config{MaxSourceBytes: -1}).Parse(strings.Repeat("1 + ", 40000) + "1")
	assert.NoError(t, err)
}

func TestSharedGrammarIsSingleton(t *testing.T) {
	assert.Same(t, sharedGrammar(), sharedGrammar())
	assert.Same(t, MustNewEngine(Config{}).grammar, MustNewEngine(Config{MaxDepth: 3}).grammar)
}
