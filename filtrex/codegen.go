package filtrex

import (
	"fmt"
)

// evalFn is the compiled form of a node. data is the record the predicate
// was invoked with.
type evalFn func(data Value) (Value, error)

// generator lowers a parsed tree into closures bound to one snapshot of the
// operator and function tables.
type generator struct {
	ops  map[string]Operator
	fns  map[string]Function
	prop propFn

	// defaultMatch is set while "~=" still has its built-in meaning, which
	// allows string literal patterns to be compiled once up front.
	defaultMatch bool
}

func (g *generator) compile(node Node) (evalFn, error) {
	switch n := node.(type) {
	case *NumberLit:
		return constant(NewNumber(n.Value)), nil
	case *StringLit:
		return constant(NewString(n.Value)), nil
	case *SymbolRef:
		return g.compileSymbol(n), nil
	case *OfExpr:
		return g.compileOf(n)
	case *CallExpr:
		return g.compileCall(n)
	case *ListExpr:
		return g.compileList(n)
	case *UnaryExpr:
		return g.compileUnary(n)
	case *BinaryExpr:
		return g.compileBinary(n)
	case *LogicalExpr:
		return g.compileLogical(n)
	case *MembershipExpr:
		return g.compileMembership(n)
	case *RelationExpr:
		return g.compileRelation(n)
	case *IfExpr:
		return g.compileIf(n)
	default:
		return nil, fmt.Errorf("unsupported node %T", node)
	}
}

func constant(v Value) evalFn {
	return func(Value) (Value, error) { return v, nil }
}

func (g *generator) compileSymbol(n *SymbolRef) evalFn {
	name, prop := n.Name, g.prop
	return func(data Value) (Value, error) {
		return prop(name, data)
	}
}

func (g *generator) compileOf(n *OfExpr) (evalFn, error) {
	object, err := g.compile(n.Object)
	if err != nil {
		return nil, err
	}
	name, prop := n.Name, g.prop
	return func(data Value) (Value, error) {
		obj, err := object(data)
		if err != nil {
			return NewNil(), err
		}
		return prop(name, obj)
	}, nil
}

// compileCall resolves the function once. An unknown name still evaluates
// its arguments before failing, the same order a known call runs in.
func (g *generator) compileCall(n *CallExpr) (evalFn, error) {
	args, err := g.compileAll(n.Args)
	if err != nil {
		return nil, err
	}
	fn, known := g.fns[n.Name]
	name := n.Name
	return func(data Value) (Value, error) {
		values, err := evalAll(args, data)
		if err != nil {
			return NewNil(), err
		}
		if !known {
			return NewNil(), unknownFunction(name)
		}
		return fn(values...)
	}, nil
}

func (g *generator) compileList(n *ListExpr) (evalFn, error) {
	elements, err := g.compileAll(n.Elements)
	if err != nil {
		return nil, err
	}
	return func(data Value) (Value, error) {
		values, err := evalAll(elements, data)
		if err != nil {
			return NewNil(), err
		}
		return NewList(values), nil
	}, nil
}

func (g *generator) compileUnary(n *UnaryExpr) (evalFn, error) {
	right, err := g.compile(n.Right)
	if err != nil {
		return nil, err
	}
	if n.Operator == "not" {
		return func(data Value) (Value, error) {
			v, err := right(data)
			if err != nil {
				return NewNil(), err
			}
			b, err := coerceBoolean(v)
			if err != nil {
				return NewNil(), err
			}
			return NewBool(!b), nil
		}, nil
	}

	op, err := g.operator(n.Operator)
	if err != nil {
		return nil, err
	}
	return func(data Value) (Value, error) {
		v, err := right(data)
		if err != nil {
			return NewNil(), err
		}
		return op(v)
	}, nil
}

func (g *generator) compileBinary(n *BinaryExpr) (evalFn, error) {
	left, err := g.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.compile(n.Right)
	if err != nil {
		return nil, err
	}
	op, err := g.operator(n.Operator)
	if err != nil {
		return nil, err
	}
	return func(data Value) (Value, error) {
		a, err := left(data)
		if err != nil {
			return NewNil(), err
		}
		b, err := right(data)
		if err != nil {
			return NewNil(), err
		}
		return op(a, b)
	}, nil
}

// compileLogical short-circuits: the right operand only runs when the left
// one does not already decide the result.
func (g *generator) compileLogical(n *LogicalExpr) (evalFn, error) {
	left, err := g.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.compile(n.Right)
	if err != nil {
		return nil, err
	}
	decisive := n.Operator == "or"
	return func(data Value) (Value, error) {
		a, err := left(data)
		if err != nil {
			return NewNil(), err
		}
		ab, err := coerceBoolean(a)
		if err != nil {
			return NewNil(), err
		}
		if ab == decisive {
			return NewBool(ab), nil
		}
		b, err := right(data)
		if err != nil {
			return NewNil(), err
		}
		bb, err := coerceBoolean(b)
		if err != nil {
			return NewNil(), err
		}
		return NewBool(bb), nil
	}, nil
}

func (g *generator) compileMembership(n *MembershipExpr) (evalFn, error) {
	left, err := g.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.compile(n.Right)
	if err != nil {
		return nil, err
	}
	negated := n.Negated
	return func(data Value) (Value, error) {
		a, err := left(data)
		if err != nil {
			return NewNil(), err
		}
		b, err := right(data)
		if err != nil {
			return NewNil(), err
		}
		subset, err := isSubset(a, b)
		if err != nil {
			return NewNil(), err
		}
		return NewBool(subset != negated), nil
	}, nil
}

// compileRelation evaluates a comparison chain left to right. Every operand
// runs at most once and is reused as the left side of the next link; the
// chain stops at the first link that yields false.
func (g *generator) compileRelation(n *RelationExpr) (evalFn, error) {
	operands, err := g.compileAll(n.Operands)
	if err != nil {
		return nil, err
	}
	links := make([]Operator, len(n.Operators))
	for i, symbol := range n.Operators {
		link, err := g.relationLink(symbol, n.Operands[i+1])
		if err != nil {
			return nil, err
		}
		links[i] = link
	}

	if len(links) == 1 {
		left, right, op := operands[0], operands[1], links[0]
		return func(data Value) (Value, error) {
			a, err := left(data)
			if err != nil {
				return NewNil(), err
			}
			b, err := right(data)
			if err != nil {
				return NewNil(), err
			}
			return op(a, b)
		}, nil
	}

	symbols := n.Operators
	return func(data Value) (Value, error) {
		left, err := operands[0](data)
		if err != nil {
			return NewNil(), err
		}
		var result Value
		for i, op := range links {
			right, err := operands[i+1](data)
			if err != nil {
				return NewNil(), err
			}
			result, err = op(left, right)
			if err != nil {
				return NewNil(), err
			}
			if i == len(links)-1 {
				break
			}
			if result.kind != KindBool {
				return NewNil(), typeErrorf("comparison %s in a chain must yield a boolean, but got %s instead.", symbols[i], describeValue(result))
			}
			if !result.Bool() {
				return result, nil
			}
			left = right
		}
		return result, nil
	}, nil
}

// relationLink returns the operator for one link of a chain. A built-in
// "~=" whose pattern is a string literal gets the pattern compiled now. An
// invalid pattern is reported when the link runs, so a short-circuited
// match never fails.
func (g *generator) relationLink(symbol string, right Node) (Operator, error) {
	lit, isLiteral := right.(*StringLit)
	if symbol != "~=" || !g.defaultMatch || !isLiteral {
		return g.operator(symbol)
	}
	re, patternErr := compilePattern(lit.Value)
	return func(operands ...Value) (Value, error) {
		if err := checkArity("~=", operands); err != nil {
			return NewNil(), err
		}
		if patternErr != nil {
			return NewNil(), patternErr
		}
		return matchPattern(re, operands[0])
	}, nil
}

func (g *generator) compileIf(n *IfExpr) (evalFn, error) {
	condition, err := g.compile(n.Condition)
	if err != nil {
		return nil, err
	}
	consequent, err := g.compile(n.Consequent)
	if err != nil {
		return nil, err
	}
	alternate, err := g.compile(n.Alternate)
	if err != nil {
		return nil, err
	}
	return func(data Value) (Value, error) {
		c, err := condition(data)
		if err != nil {
			return NewNil(), err
		}
		ok, err := coerceBoolean(c)
		if err != nil {
			return NewNil(), err
		}
		if ok {
			return consequent(data)
		}
		return alternate(data)
	}, nil
}

func (g *generator) operator(symbol string) (Operator, error) {
	op, ok := g.ops[symbol]
	if !ok || op == nil {
		return nil, typeErrorf("Unknown operator: %s", symbol)
	}
	return op, nil
}

func (g *generator) compileAll(nodes []Node) ([]evalFn, error) {
	out := make([]evalFn, len(nodes))
	for i, node := range nodes {
		fn, err := g.compile(node)
		if err != nil {
			return nil, err
		}
		out[i] = fn
	}
	return out, nil
}

func evalAll(fns []evalFn, data Value) ([]Value, error) {
	values := make([]Value, len(fns))
	for i, fn := range fns {
		v, err := fn(data)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
