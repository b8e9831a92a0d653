// Package filtrex compiles small filter expressions into predicates that are
// evaluated against data records. The expression language supports:
//   - Arithmetic (+, -, *, /, %, ^) and unary minus.
//   - Comparisons (==, !=, <, <=, >, >=) that chain, as in `1 < x <= 10`,
//     and regular expression matching with `~=`.
//   - Boolean logic with and/or/not and `if .. then .. else ..`.
//   - Membership tests with `in` and `not in` against literal lists
//     such as `("a", "b")`.
//   - Record properties by name (`order.total`, `'first name'`) and
//     property access on other values with `name of expr`.
//   - Calls to functions from the function table, like `max(a, b)`.
//
// Expressions can only read properties a record owns and only call the
// functions they are given, so they are safe to accept from untrusted users.
// Compiled predicates copy their operator and function tables and are safe
// for concurrent use.
package filtrex
