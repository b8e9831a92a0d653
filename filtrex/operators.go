package filtrex

import (
	"fmt"
	"math"
	"regexp"
)

const (
	maxRegexPatternSize = 16 << 10
	maxRegexInputBytes  = 1 << 20
)

// Operator implements one operator symbol. Binary operators receive two
// operands; unary minus calls the "-" entry with one.
type Operator func(operands ...Value) (Value, error)

// operatorSymbols lists every symbol the grammar dispatches through the
// operator table.
var operatorSymbols = []string{"+", "-", "*", "/", "%", "^", "==", "!=", "~=", "<", "<=", ">", ">="}

func defaultOperators() map[string]Operator {
	return map[string]Operator{
		"+":  opAdd,
		"-":  opSubtract,
		"*":  numericOperator("*", func(a, b float64) float64 { return a * b }),
		"/":  numericOperator("/", func(a, b float64) float64 { return a / b }),
		"%":  numericOperator("%", modulo),
		"^":  numericOperator("^", power),
		"==": opEqual,
		"!=": opNotEqual,
		"<":  comparison("<", func(a, b float64) bool { return a < b }),
		"<=": comparison("<=", func(a, b float64) bool { return a <= b }),
		">":  comparison(">", func(a, b float64) bool { return a > b }),
		">=": comparison(">=", func(a, b float64) bool { return a >= b }),
		"~=": opMatch,
	}
}

func checkArity(symbol string, operands []Value) error {
	if len(operands) != 2 {
		return typeErrorf("operator %s expects 2 operands, got %d", symbol, len(operands))
	}
	return nil
}

// opAdd adds two numbers and concatenates anything else as text.
func opAdd(operands ...Value) (Value, error) {
	if err := checkArity("+", operands); err != nil {
		return NewNil(), err
	}
	a, err := coerceNumberOrString(operands[0])
	if err != nil {
		return NewNil(), err
	}
	b, err := coerceNumberOrString(operands[1])
	if err != nil {
		return NewNil(), err
	}
	if a.kind == KindNumber && b.kind == KindNumber {
		return NewNumber(a.Number() + b.Number()), nil
	}
	return NewString(a.String() + b.String()), nil
}

func opSubtract(operands ...Value) (Value, error) {
	switch len(operands) {
	case 1:
		a, err := coerceNumber(operands[0])
		if err != nil {
			return NewNil(), err
		}
		return NewNumber(-a), nil
	case 2:
		a, err := coerceNumber(operands[0])
		if err != nil {
			return NewNil(), err
		}
		b, err := coerceNumber(operands[1])
		if err != nil {
			return NewNil(), err
		}
		return NewNumber(a - b), nil
	default:
		return NewNil(), typeErrorf("operator - expects 1 or 2 operands, got %d", len(operands))
	}
}

func numericOperator(symbol string, fn func(a, b float64) float64) Operator {
	return func(operands ...Value) (Value, error) {
		if err := checkArity(symbol, operands); err != nil {
			return NewNil(), err
		}
		a, err := coerceNumber(operands[0])
		if err != nil {
			return NewNil(), err
		}
		b, err := coerceNumber(operands[1])
		if err != nil {
			return NewNil(), err
		}
		return NewNumber(fn(a, b)), nil
	}
}

func comparison(symbol string, fn func(a, b float64) bool) Operator {
	return func(operands ...Value) (Value, error) {
		if err := checkArity(symbol, operands); err != nil {
			return NewNil(), err
		}
		a, err := coerceNumber(operands[0])
		if err != nil {
			return NewNil(), err
		}
		b, err := coerceNumber(operands[1])
		if err != nil {
			return NewNil(), err
		}
		return NewBool(fn(a, b)), nil
	}
}

// modulo is the mathematical modulus: the result takes the sign of b.
func modulo(a, b float64) float64 {
	return math.Mod(math.Mod(a, b)+b, b)
}

// power follows IEEE pow except that a NaN exponent, or an infinite exponent
// on a base of magnitude one, yields NaN.
func power(a, b float64) float64 {
	if math.IsNaN(b) || (math.Abs(a) == 1 && math.IsInf(b, 0)) {
		return math.NaN()
	}
	return math.Pow(a, b)
}

func opEqual(operands ...Value) (Value, error) {
	if err := checkArity("==", operands); err != nil {
		return NewNil(), err
	}
	return NewBool(operands[0].Equal(operands[1])), nil
}

func opNotEqual(operands ...Value) (Value, error) {
	if err := checkArity("!=", operands); err != nil {
		return NewNil(), err
	}
	return NewBool(!operands[0].Equal(operands[1])), nil
}

// opMatch tests the left operand, as text, against the right operand
// compiled as a regular expression.
func opMatch(operands ...Value) (Value, error) {
	if err := checkArity("~=", operands); err != nil {
		return NewNil(), err
	}
	pattern, err := coerceString(operands[1])
	if err != nil {
		return NewNil(), err
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return NewNil(), err
	}
	return matchPattern(re, operands[0])
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > maxRegexPatternSize {
		return nil, typeErrorf("regular expression exceeds limit of %d bytes", maxRegexPatternSize)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &TypeError{Message: fmt.Sprintf("Invalid regular expression %q: %v", pattern, err)}
	}
	return re, nil
}

func matchPattern(re *regexp.Regexp, subject Value) (Value, error) {
	text, err := coerceString(subject)
	if err != nil {
		return NewNil(), err
	}
	if len(text) > maxRegexInputBytes {
		return NewNil(), typeErrorf("text matched by ~= exceeds limit of %d bytes", maxRegexInputBytes)
	}
	return NewBool(re.MatchString(text)), nil
}
