package filtrex

import (
	"strconv"
)

// Getter reads an own property of the value a custom property resolver was
// called for. It fails with a ReferenceError exactly like the default
// lookup.
type Getter func(name string) (Value, error)

// PropFunc replaces the default strict property lookup. obj is the record
// being evaluated, or the value of the right operand of "of".
type PropFunc func(name string, get Getter, obj Value) (Value, error)

type propFn func(name string, obj Value) (Value, error)

func coerceBoolean(v Value) (bool, error) {
	if v.kind == KindBool {
		return v.Bool(), nil
	}
	return false, typeErrorf("Expected a boolean (\"true\" or \"false\") value, but got %s instead.", describeValue(v))
}

func coerceNumber(v Value) (float64, error) {
	if v.kind == KindNil {
		return 0, typeErrorf("Expected a numeric value, but got null instead.")
	}
	unwrapped := unwrapSingleton(v)
	if unwrapped.kind == KindNumber {
		return unwrapped.Number(), nil
	}
	return 0, typeErrorf("Expected a numeric value, but got %s instead.", describeValue(v))
}

func coerceString(v Value) (string, error) {
	if v.kind == KindNil {
		return "", typeErrorf("Expected a text, but got null instead.")
	}
	unwrapped := unwrapSingleton(v)
	if unwrapped.kind == KindString {
		return unwrapped.data.(string), nil
	}
	return "", typeErrorf("Expected a text, but got %s instead.", describeValue(v))
}

// coerceNumberOrString returns v itself when it is a number or string.
func coerceNumberOrString(v Value) (Value, error) {
	if v.kind == KindNumber || v.kind == KindString {
		return v, nil
	}
	if v.kind == KindNil {
		return NewNil(), typeErrorf("Expected a text or number, but got null instead.")
	}
	unwrapped := unwrapSingleton(v)
	if unwrapped.kind == KindNumber || unwrapped.kind == KindString {
		return unwrapped, nil
	}
	return NewNil(), typeErrorf("Expected a text or number, but got %s instead.", describeValue(v))
}

// coerceList wraps any non-list value as a one element list.
func coerceList(v Value) ([]Value, error) {
	switch v.kind {
	case KindNil:
		return nil, typeErrorf("Expected a list, but got null instead.")
	case KindList:
		return v.List(), nil
	default:
		return []Value{v}, nil
	}
}

func unwrapSingleton(v Value) Value {
	if items := v.List(); len(items) == 1 {
		return items[0]
	}
	return v
}

func describeValue(v Value) string {
	switch v.kind {
	case KindNil:
		return "null"
	case KindRecord:
		return "a record"
	case KindList:
		if len(v.List()) == 0 {
			return "an empty list"
		}
		return "the list " + v.Inspect()
	default:
		return "the " + v.kind.String() + " " + v.Inspect()
	}
}

// isSubset reports whether every element of a is present in b.
func isSubset(a, b Value) (bool, error) {
	left, err := coerceList(a)
	if err != nil {
		return false, err
	}
	right, err := coerceList(b)
	if err != nil {
		return false, err
	}
	for _, want := range left {
		found := false
		for _, have := range right {
			if want.Equal(have) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// ownProperty reads a property obj holds directly. Records answer through
// Own; lists own their decimal indices and "length". Nothing else has
// properties.
func ownProperty(name string, obj Value) (Value, bool) {
	switch obj.kind {
	case KindRecord:
		return obj.Record().Own(name)
	case KindList:
		items := obj.List()
		if name == "length" {
			return NewNumber(float64(len(items))), true
		}
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(items) || strconv.Itoa(idx) != name {
			return NewNil(), false
		}
		return items[idx], true
	default:
		return NewNil(), false
	}
}

func strictProp(name string, obj Value) (Value, error) {
	if v, ok := ownProperty(name, obj); ok {
		return v, nil
	}
	return NewNil(), unknownProperty(name)
}

func ownGetter(obj Value) Getter {
	return func(name string) (Value, error) {
		return strictProp(name, obj)
	}
}

func propResolver(custom PropFunc) propFn {
	if custom == nil {
		return strictProp
	}
	return func(name string, obj Value) (Value, error) {
		return custom(name, ownGetter(obj), obj)
	}
}
