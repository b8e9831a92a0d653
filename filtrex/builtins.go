package filtrex

import (
	"math"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Function is an entry of the function table.
type Function func(args ...Value) (Value, error)

func defaultFunctions() map[string]Function {
	return map[string]Function{
		"abs":    unaryMath("abs", math.Abs),
		"ceil":   unaryMath("ceil", math.Ceil),
		"floor":  unaryMath("floor", math.Floor),
		"log":    unaryMath("log", math.Log),
		"log2":   unaryMath("log2", math.Log2),
		"log10":  unaryMath("log10", math.Log10),
		"sqrt":   unaryMath("sqrt", math.Sqrt),
		"round":  unaryMath("round", roundHalfUp),
		"max":    builtinMax,
		"min":    builtinMin,
		"exists": builtinExists,
		"empty":  builtinEmpty,
		"len":    builtinLen,
		"lower":  caseMapper("lower", cases.Lower),
		"upper":  caseMapper("upper", cases.Upper),
	}
}

func expectArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return typeErrorf("%s() expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func unaryMath(name string, fn func(float64) float64) Function {
	return func(args ...Value) (Value, error) {
		if err := expectArgs(name, args, 1); err != nil {
			return NewNil(), err
		}
		x, err := coerceNumber(args[0])
		if err != nil {
			return NewNil(), err
		}
		return NewNumber(fn(x)), nil
	}
}

// roundHalfUp rounds halves toward positive infinity: round(-2.5) is -2.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

func builtinMax(args ...Value) (Value, error) {
	result := math.Inf(-1)
	for _, arg := range args {
		x, err := coerceNumber(arg)
		if err != nil {
			return NewNil(), err
		}
		result = math.Max(result, x)
	}
	return NewNumber(result), nil
}

func builtinMin(args ...Value) (Value, error) {
	result := math.Inf(1)
	for _, arg := range args {
		x, err := coerceNumber(arg)
		if err != nil {
			return NewNil(), err
		}
		result = math.Min(result, x)
	}
	return NewNumber(result), nil
}

func builtinExists(args ...Value) (Value, error) {
	if err := expectArgs("exists", args, 1); err != nil {
		return NewNil(), err
	}
	return NewBool(!args[0].IsNil()), nil
}

func builtinEmpty(args ...Value) (Value, error) {
	if err := expectArgs("empty", args, 1); err != nil {
		return NewNil(), err
	}
	v := args[0]
	switch v.kind {
	case KindNil:
		return NewBool(true), nil
	case KindString:
		return NewBool(v.data.(string) == ""), nil
	case KindList:
		return NewBool(len(v.List()) == 0), nil
	default:
		return NewBool(false), nil
	}
}

// builtinLen counts characters of a string or elements of a list.
func builtinLen(args ...Value) (Value, error) {
	if err := expectArgs("len", args, 1); err != nil {
		return NewNil(), err
	}
	v := args[0]
	switch v.kind {
	case KindString:
		return NewNumber(float64(utf8.RuneCountInString(v.data.(string)))), nil
	case KindList:
		return NewNumber(float64(len(v.List()))), nil
	default:
		return NewNil(), typeErrorf("len() expects a text or list, but got %s instead.", describeValue(v))
	}
}

// caseMapper builds a fresh Caser per call; a Caser keeps state and must not
// be shared between goroutines.
func caseMapper(name string, newCaser func(language.Tag, ...cases.Option) cases.Caser) Function {
	return func(args ...Value) (Value, error) {
		if err := expectArgs(name, args, 1); err != nil {
			return NewNil(), err
		}
		s, err := coerceString(args[0])
		if err != nil {
			return NewNil(), err
		}
		return NewString(newCaser(language.Und).String(s)), nil
	}
}
