package filtrex

import (
	"maps"
	"reflect"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// Options customise one Compile call. The maps are copied when the
// expression is compiled, so later changes never reach an existing
// Predicate.
type Options struct {
	// ExtraFunctions are merged into the function table and win over
	// built-ins of the same name. A nil entry removes the name.
	ExtraFunctions map[string]Function `mapstructure:"extraFunctions"`
	// CustomProp replaces the strict property lookup.
	CustomProp PropFunc `mapstructure:"customProp"`
	// Operators override or extend the operator table.
	Operators map[string]Operator `mapstructure:"operators"`
}

// OptionsFromMap decodes loosely typed options, as produced by
// configuration loaders or embedding hosts. Function values may be given
// with their unnamed signatures. Any key other than extraFunctions,
// customProp and operators is a TypeError.
func OptionsFromMap(raw map[string]any) (Options, error) {
	var (
		opts Options
		md   mapstructure.Metadata
	)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(convertFuncHook),
		Metadata:   &md,
		Result:     &opts,
		MatchName:  func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, typeErrorf("invalid options: %v", err)
	}
	if len(md.Unused) > 0 {
		unused := slices.Sorted(slices.Values(md.Unused))
		return Options{}, typeErrorf("Unknown option: %s", unused[0])
	}
	return opts, nil
}

// convertFuncHook converts a function value to a named function type with
// the same signature, e.g. func(...Value) (Value, error) to Function.
func convertFuncHook(from, to reflect.Type, data any) (any, error) {
	if from == to || from.Kind() != reflect.Func || to.Kind() != reflect.Func {
		return data, nil
	}
	if !from.ConvertibleTo(to) {
		return data, nil
	}
	return reflect.ValueOf(data).Convert(to).Interface(), nil
}

// functionTable merges user functions into a fresh copy of the defaults.
func functionTable(defaults map[string]Function, extra map[string]Function) map[string]Function {
	table := maps.Clone(defaults)
	for name, fn := range extra {
		if fn == nil {
			delete(table, name)
			continue
		}
		table[name] = fn
	}
	return table
}

// operatorTable merges user operators into the defaults. Every symbol the
// grammar can dispatch must resolve to a function.
func operatorTable(extra map[string]Operator) (map[string]Operator, bool, error) {
	table := defaultOperators()
	_, matchOverridden := extra["~="]
	for symbol, op := range extra {
		if op == nil {
			return nil, false, typeErrorf("Operator %q must be a function.", symbol)
		}
		table[symbol] = op
	}
	return table, !matchOverridden, nil
}
