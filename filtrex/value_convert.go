package filtrex

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// FromGo converts a host value into a Value. It accepts nil, Value, Record,
// booleans, strings, every integer and float type, json.Number, slices and
// arrays, maps with string keys, pointers to any of these, and structs.
// A nil pointer converts to nil. A value implementing encoding.TextMarshaler
// becomes its text. A struct becomes a record of its exported fields, keyed by
// the json tag name when there is one; fields tagged "-" are left out.
// Anything else is a TypeError.
func FromGo(val any) (Value, error) {
	return fromGo(val, 0)
}

// maxConvertDepth bounds nesting so a pointer cycle fails instead of
// recursing forever.
const maxConvertDepth = 256

var errConvertDepth = typeErrorf("value nests deeper than %d levels", maxConvertDepth)

func fromGo(val any, depth int) (Value, error) {
	if depth > maxConvertDepth {
		return NewNil(), errConvertDepth
	}
	switch v := val.(type) {
	case nil:
		return NewNil(), nil
	case Value:
		return v, nil
	case Record:
		return NewRecordValue(v), nil
	case bool:
		return NewBool(v), nil
	case string:
		return NewString(v), nil
	case float64:
		return NewNumber(v), nil
	case float32:
		return NewNumber(float64(v)), nil
	case int:
		return NewNumber(float64(v)), nil
	case int64:
		return NewNumber(float64(v)), nil
	case int32:
		return NewNumber(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return NewNil(), typeErrorf("invalid number %q", v.String())
		}
		return NewNumber(f), nil
	case []Value:
		return NewList(v), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			converted, err := fromGo(item, depth+1)
			if err != nil {
				return NewNil(), err
			}
			items[i] = converted
		}
		return NewList(items), nil
	case map[string]Value:
		return NewRecordValue(NewRecord(v)), nil
	case map[string]any:
		fields := make(map[string]Value, len(v))
		for key, item := range v {
			converted, err := fromGo(item, depth+1)
			if err != nil {
				return NewNil(), fieldError(key, err)
			}
			fields[key] = converted
		}
		return NewRecordValue(NewRecord(fields)), nil
	case encoding.TextMarshaler:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return NewNil(), nil
		}
		text, err := v.MarshalText()
		if err != nil {
			return NewNil(), typeErrorf("cannot convert %T to text: %v", v, err)
		}
		return NewString(string(text)), nil
	}
	return fromReflect(reflect.ValueOf(val), depth)
}

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NewNumber(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float()), nil
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewList([]Value{}), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			converted, err := fromGo(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return NewNil(), err
			}
			items[i] = converted
		}
		return NewList(items), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return NewNil(), typeErrorf("unsupported map key type %s", rv.Type().Key())
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			converted, err := fromGo(iter.Value().Interface(), depth+1)
			if err != nil {
				return NewNil(), fieldError(key, err)
			}
			fields[key] = converted
		}
		return NewRecordValue(NewRecord(fields)), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NewNil(), nil
		}
		return fromGo(rv.Elem().Interface(), depth+1)
	case reflect.Struct:
		return fromStruct(rv, depth)
	case reflect.Invalid:
		return NewNil(), nil
	default:
		return NewNil(), typeErrorf("unsupported value type %s", rv.Type())
	}
}

// fromStruct builds a record from the exported fields of rv, including those
// promoted from embedded structs. Fields behind a nil embedded pointer are
// skipped.
func fromStruct(rv reflect.Value, depth int) (Value, error) {
	fields := make(map[string]Value)
	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || (field.Anonymous && indirectKind(field.Type) == reflect.Struct) {
			continue
		}
		name, skip := structFieldName(field)
		if skip {
			continue
		}
		fv, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			continue
		}
		converted, err := fromGo(fv.Interface(), depth+1)
		if err != nil {
			return NewNil(), fieldError(name, err)
		}
		fields[name] = converted
	}
	return NewRecordValue(NewRecord(fields)), nil
}

// fieldError names the field a conversion failed in. The depth error is
// passed through so a cycle does not produce one prefix per level.
func fieldError(name string, err error) error {
	if errors.Is(err, errConvertDepth) {
		return err
	}
	return fmt.Errorf("field %q: %w", name, err)
}

func structFieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" && !strings.Contains(tag, ",") {
		return "", true
	}
	if name == "" {
		return field.Name, false
	}
	return name, false
}

func indirectKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind()
	}
	return t.Kind()
}

// ToGo converts v into plain Go values: nil, bool, float64, string, []any,
// and map[string]any for records that can list their keys. Other records
// are returned as is.
func ToGo(v Value) any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number()
	case KindString:
		return v.data.(string)
	case KindList:
		items := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = ToGo(item)
		}
		return out
	case KindRecord:
		r := v.Record()
		keyed, ok := r.(KeyedRecord)
		if !ok {
			return r
		}
		keys := keyed.Keys()
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			val, _ := r.Own(key)
			out[key] = ToGo(val)
		}
		return out
	default:
		return nil
	}
}
