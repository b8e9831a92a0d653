package filtrex

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindRecord
)

// Value is the runtime representation of every expression result.
type Value struct {
	kind ValueKind
	data any
}

func NewNil() Value                { return Value{kind: KindNil} }
func NewBool(b bool) Value         { return Value{kind: KindBool, data: b} }
func NewNumber(f float64) Value    { return Value{kind: KindNumber, data: f} }
func NewString(s string) Value     { return Value{kind: KindString, data: s} }
func NewList(items []Value) Value  { return Value{kind: KindList, data: items} }
func NewRecordValue(r Record) Value {
	if r == nil {
		return NewNil()
	}
	return Value{kind: KindRecord, data: r}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Number() float64 {
	if v.kind == KindNumber {
		return v.data.(float64)
	}
	return 0
}

func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Record() Record {
	if v.kind != KindRecord {
		return nil
	}
	return v.data.(Record)
}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String converts v to text the way string concatenation does: numbers in
// their shortest round-trip form and list elements joined by commas.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "null"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number())
	case KindString:
		return v.data.(string)
	case KindList:
		items := v.List()
		parts := make([]string, len(items))
		for i, item := range items {
			if item.kind == KindNil {
				continue
			}
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindRecord:
		return "[record]"
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// Inspect renders v unambiguously, quoting strings and parenthesising
// lists the way the expression syntax writes them.
func (v Value) Inspect() string {
	switch v.kind {
	case KindString:
		return encodeQuoted('"', v.data.(string))
	case KindList:
		items := v.List()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.Inspect()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindRecord:
		r := v.Record()
		keyed, ok := r.(KeyedRecord)
		if !ok {
			return "{record}"
		}
		keys := keyed.Keys()
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			val, _ := r.Own(key)
			parts = append(parts, renderSymbol(key, QuoteNone)+": "+val.Inspect())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.String()
	}
}

// Equal is exact equality: both kinds must match and no coercion happens.
// NaN is not equal to itself. Records are equal only when they are the same
// record.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindNumber:
		return v.Number() == other.Number()
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindList:
		a, b := v.List(), other.List()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return sameRecord(v.Record(), other.Record())
	default:
		return false
	}
}

func sameRecord(a, b Record) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() || !ra.Comparable() {
		return false
	}
	return a == b
}

// formatNumber matches the number-to-text conversion of JavaScript engines,
// which is what expression authors expect from "+" concatenation.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
