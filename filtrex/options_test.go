package filtrex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromMap(t *testing.T) {
	opts, err := OptionsFromMap(map[string]any{
		"extraFunctions": map[string]any{
			"double": func(args ...Value) (Value, error) {
				return NewNumber(args[0].Number() * 2), nil
			},
			"named": Function(func(args ...Value) (Value, error) { return NewString("named"), nil }),
		},
		"operators": map[string]any{
			"+": func(operands ...Value) (Value, error) { return NewString("plus"), nil },
		},
		"customProp": func(name string, get Getter, obj Value) (Value, error) {
			return NewString(name), nil
		},
	})
	require.NoError(t, err)
	require.Len(t, opts.ExtraFunctions, 2)
	require.Len(t, opts.Operators, 1)
	require.NotNil(t, opts.CustomProp)

	assert.Equal(t, NewNumber(8), evalExpr(t, "double(4)", nil, opts))
	assert.Equal(t, NewString("named"), evalExpr(t, "named()", nil, opts))
	assert.Equal(t, NewString("plus"), evalExpr(t, "1 + 2", nil, opts))
	assert.Equal(t, NewString("anything"), evalExpr(t, "anything", nil, opts))
}

func TestOptionsFromMapRejectsUnknownKeys(t *testing.T) {
	_, err := OptionsFromMap(map[string]any{"extraFunctions": nil, "bogus": 1, "another": 2})
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr), "expected TypeError, got %v", err)
	assert.Equal(t, "TypeError: Unknown option: another", err.Error())

	_, err = OptionsFromMap(map[string]any{"ExtraFunctions": map[string]any{}})
	assert.Equal(t, "TypeError: Unknown option: ExtraFunctions", err.Error())
}

func TestOptionsFromMapRejectsWrongTypes(t *testing.T) {
	_, err := OptionsFromMap(map[string]any{"extraFunctions": 5})
	assert.Equal(t, "TypeError", ErrorKind(err))

	_, err = OptionsFromMap(map[string]any{
		"extraFunctions": map[string]any{"f": func() int { return 1 }},
	})
	assert.Equal(t, "TypeError", ErrorKind(err))
}

func TestOptionsFromMapEmpty(t *testing.T) {
	opts, err := OptionsFromMap(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.ExtraFunctions)
	assert.Nil(t, opts.CustomProp)
}

func TestCompileRejectsExtraArguments(t *testing.T) {
	_, err := Compile("1", Options{}, Options{})
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "TypeError: Too many arguments.", err.Error())
}

func TestCompileRejectsNilOperator(t *testing.T) {
	_, err := Compile("1 + 1", Options{Operators: map[string]Operator{"+": nil}})
	assert.Equal(t, "TypeError", ErrorKind(err))
}

func TestOperatorOverrides(t *testing.T) {
	var got []int
	ops := map[string]Operator{
		"-": func(operands ...Value) (Value, error) {
			got = append(got, len(operands))
			return NewNumber(0), nil
		},
		"==": func(operands ...Value) (Value, error) {
			a, _ := coerceString(NewString(operands[0].String()))
			b, _ := coerceString(NewString(operands[1].String()))
			return NewBool(a == b), nil
		},
	}
	opts := Options{Operators: ops}
	assert.Equal(t, NewNumber(0), evalExpr(t, "-5", nil, opts))
	assert.Equal(t, NewNumber(0), evalExpr(t, "5 - 3", nil, opts))
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, NewBool(true), evalExpr(t, `1 == "1"`, nil, opts))
	assert.Equal(t, NewNumber(6), evalExpr(t, "2 * 3", nil, opts))
}

func TestOptionsAreSnapshotted(t *testing.T) {
	fns := map[string]Function{
		"f": func(args ...Value) (Value, error) { return NewNumber(1), nil },
	}
	ops := map[string]Operator{}
	pred, err := Compile("f() + 1", Options{ExtraFunctions: fns, Operators: ops})
	require.NoError(t, err)

	fns["f"] = func(args ...Value) (Value, error) { return NewNumber(100), nil }
	ops["+"] = func(operands ...Value) (Value, error) { return NewString("changed"), nil }

	got, err := pred.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, NewNumber(2), got)
}

func TestEngineFunctionsAreSnapshotted(t *testing.T) {
	engine := MustNewEngine(Config{})
	require.NoError(t, engine.RegisterFunction("answer", func(args ...Value) (Value, error) {
		return NewNumber(42), nil
	}))
	pred, err := engine.Compile("answer()")
	require.NoError(t, err)

	require.NoError(t, engine.RegisterFunction("answer", func(args ...Value) (Value, error) {
		return NewNumber(0), nil
	}))
	got, err := pred.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, NewNumber(42), got)

	later, err := engine.Compile("answer()")
	require.NoError(t, err)
	got, err = later.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, NewNumber(0), got)

	_, err = Compile("answer()")
	require.NoError(t, err)
	_, err = mustCompile(t, "answer()").Eval(nil)
	assert.Equal(t, "ReferenceError", ErrorKind(err), "default engine must not see engine registrations")
}

func TestRegisterFunctionValidates(t *testing.T) {
	engine := MustNewEngine(Config{})
	assert.Error(t, engine.RegisterFunction("", func(args ...Value) (Value, error) { return NewNil(), nil }))
	assert.Error(t, engine.RegisterFunction("x", nil))
	assert.Contains(t, engine.Functions(), "abs")
	assert.NotContains(t, engine.Functions(), "x")
}

func mustCompile(t *testing.T, expr string, opts ...Options) *Predicate {
	t.Helper()
	pred, err := Compile(expr, opts...)
	require.NoError(t, err, "compile %q", expr)
	return pred
}
