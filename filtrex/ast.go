package filtrex

import (
	"strings"
)

// Node is one element of the parsed expression. String renders the node
// fully parenthesised, which makes the applied precedence explicit.
type Node interface {
	Pos() Position
	String() string
	exprNode()
}

type NumberLit struct {
	Value    float64
	Raw      string
	position Position
}

func (e *NumberLit) exprNode()      {}
func (e *NumberLit) Pos() Position  { return e.position }
func (e *NumberLit) String() string { return e.Raw }

type StringLit struct {
	Value    string
	position Position
}

func (e *StringLit) exprNode()      {}
func (e *StringLit) Pos() Position  { return e.position }
func (e *StringLit) String() string { return encodeQuoted('"', e.Value) }

// SymbolRef reads Name from the record being evaluated.
type SymbolRef struct {
	Name     string
	Quote    Quote
	position Position
}

func (e *SymbolRef) exprNode()      {}
func (e *SymbolRef) Pos() Position  { return e.position }
func (e *SymbolRef) String() string { return renderSymbol(e.Name, e.Quote) }

// OfExpr reads Name from the value of Object instead of the record.
type OfExpr struct {
	Name     string
	Quote    Quote
	Object   Node
	position Position
}

func (e *OfExpr) exprNode()     {}
func (e *OfExpr) Pos() Position { return e.position }
func (e *OfExpr) String() string {
	return "(" + renderSymbol(e.Name, e.Quote) + " of " + e.Object.String() + ")"
}

type CallExpr struct {
	Name     string
	Quote    Quote
	Args     []Node
	position Position
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.position }
func (e *CallExpr) String() string {
	return renderSymbol(e.Name, e.Quote) + "(" + joinNodes(e.Args) + ")"
}

// ListExpr is a parenthesised, comma separated literal list of at least two
// elements.
type ListExpr struct {
	Elements []Node
	position Position
}

func (e *ListExpr) exprNode()      {}
func (e *ListExpr) Pos() Position  { return e.position }
func (e *ListExpr) String() string { return "(" + joinNodes(e.Elements) + ")" }

// UnaryExpr is negation ("-") or boolean "not".
type UnaryExpr struct {
	Operator string
	Right    Node
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }
func (e *UnaryExpr) String() string {
	if e.Operator == "not" {
		return "(not " + e.Right.String() + ")"
	}
	return "(" + e.Operator + e.Right.String() + ")"
}

// BinaryExpr is an arithmetic operator dispatched through the operator table.
type BinaryExpr struct {
	Operator string
	Left     Node
	Right    Node
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// LogicalExpr is a short-circuiting "and" or "or".
type LogicalExpr struct {
	Operator string
	Left     Node
	Right    Node
	position Position
}

func (e *LogicalExpr) exprNode()     {}
func (e *LogicalExpr) Pos() Position { return e.position }
func (e *LogicalExpr) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

type MembershipExpr struct {
	Negated  bool
	Left     Node
	Right    Node
	position Position
}

func (e *MembershipExpr) exprNode()     {}
func (e *MembershipExpr) Pos() Position { return e.position }
func (e *MembershipExpr) String() string {
	op := " in "
	if e.Negated {
		op = " not in "
	}
	return "(" + e.Left.String() + op + e.Right.String() + ")"
}

// RelationExpr is a chain of comparisons. len(Operands) == len(Operators)+1;
// a single comparison is a chain with one operator.
type RelationExpr struct {
	Operands  []Node
	Operators []string
	position  Position
}

func (e *RelationExpr) exprNode()     {}
func (e *RelationExpr) Pos() Position { return e.position }
func (e *RelationExpr) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(e.Operands[0].String())
	for i, op := range e.Operators {
		b.WriteString(" ")
		b.WriteString(op)
		b.WriteString(" ")
		b.WriteString(e.Operands[i+1].String())
	}
	b.WriteString(")")
	return b.String()
}

type IfExpr struct {
	Condition  Node
	Consequent Node
	Alternate  Node
	position   Position
}

func (e *IfExpr) exprNode()     {}
func (e *IfExpr) Pos() Position { return e.position }
func (e *IfExpr) String() string {
	return "(if " + e.Condition.String() + " then " + e.Consequent.String() + " else " + e.Alternate.String() + ")"
}

func renderSymbol(name string, q Quote) string {
	if q == QuoteNone && isBareSymbol(name) {
		return name
	}
	return encodeQuoted('\'', name)
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
