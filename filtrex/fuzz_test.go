package filtrex

import (
	"strings"
	"testing"
)

func FuzzCompileDoesNotPanic(f *testing.F) {
	f.Add("")
	f.Add("2 + 3 * 4")
	f.Add("a < b <= c")
	f.Add("'it\\'s' of x")
	f.Add("if a then b else")
	f.Add("x not in (1, 2")
	f.Add(strings.Repeat("(", 300))

	engine := MustNewEngine(Config{})
	// Parenthesising adds nesting, so the canonical form is parsed without limits.
	unlimited := MustNewEngine(Config{MaxDepth: -1, MaxSourceBytes: -1})
	f.Fuzz(func(t *testing.T, expr string) {
		pred, err := engine.Compile(expr)
		if err != nil {
			if ErrorKind(err) == "" {
				t.Fatalf("untyped compile error for %q: %v", expr, err)
			}
			return
		}
		// The canonical form must parse back to itself.
		canonical := pred.String()
		again, err := unlimited.Parse(canonical)
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", canonical, expr, err)
		}
		if again.String() != canonical {
			t.Fatalf("canonical form is not stable: %q became %q", canonical, again.String())
		}
	})
}

func FuzzEvalDoesNotPanic(f *testing.F) {
	f.Add("x + y", "a", 1.5)
	f.Add("x ~= y", "(", 0.0)
	f.Add("len(x) > y", "héllo", 3.0)
	f.Add("x in (y, 1) and not empty(x)", "", -1.0)

	f.Fuzz(func(t *testing.T, expr string, text string, number float64) {
		pred, err := Compile(expr)
		if err != nil {
			return
		}
		_, _ = pred.Eval(map[string]any{"x": text, "y": number, "z": []any{text, number}})
	})
}
