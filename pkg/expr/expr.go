// Package expr provides the SQL expression tree used by pgquery statements.
//
// The package has two layers:
//
//   - Nodes (Placeholder, ColumnRef, Func, CompareExpr, Select, ...) form a closed
//     set of immutable Expr values. Rendering a node is a pure function of the
//     node: SQL() never allocates placeholders and always yields the same text.
//   - Builders (Filter, Math, SelectExpr, Join, Conflict, Value, ...) are
//     short-lived values that are lowered into nodes exactly once, through
//     Lower(*args.Holder). Lowering is where literal values are pushed to the
//     argument holder and replaced by placeholders.
//
// Builders never mutate in place. Every combinator returns a new value, so a
// builder can be reused as the operand of several expressions without
// aliasing surprises. Lowering always proceeds left to right in textual
// order, which is what keeps placeholder numbering monotonic across nested
// sub-expressions:
//
//	h := args.New()
//	f := expr.Col(users.Age).Between(10, 20)
//	e := f.Lower(h)
//	e.SQL()    // users.age BETWEEN $1 AND $2
//	h.Drain()  // []any{10, 20}
package expr

import (
	"strings"

	"github.com/pthm/pgquery/pkg/args"
	"github.com/pthm/pgquery/pkg/table"
)

// Expr is a lowered, renderable SQL fragment.
// The set of implementations is closed to this package.
type Expr interface {
	SQL() string
	isExpr()
}

// Lowerer is anything that can be converted into an Expr.
// Lower may push values into h and must be called at most once per
// statement build.
type Lowerer interface {
	Lower(h *args.Holder) Expr
}

// LowerFunc adapts a function to the Lowerer interface.
type LowerFunc func(h *args.Holder) Expr

// Lower calls f(h).
func (f LowerFunc) Lower(h *args.Holder) Expr { return f(h) }

// Arg converts v into a Lowerer:
//   - a Lowerer is returned as is
//   - an Expr lowers to itself
//   - a table.Column lowers to a column reference
//   - anything else is a bound value
func Arg(v any) Lowerer {
	switch x := v.(type) {
	case Lowerer:
		return x
	case Expr:
		return exprLowerer{x}
	case table.Column:
		return Col(x)
	default:
		return Value(v)
	}
}

// LowerAll lowers each argument in order.
func LowerAll(h *args.Holder, vs ...any) []Expr {
	out := make([]Expr, len(vs))
	for i, v := range vs {
		out[i] = Arg(v).Lower(h)
	}
	return out
}

type exprLowerer struct{ e Expr }

func (l exprLowerer) Lower(*args.Holder) Expr { return l.e }

// Value wraps a literal so that it is bound as an argument when lowered.
func Value(v any) Lowerer {
	return value{v: v}
}

type value struct{ v any }

func (v value) Lower(h *args.Holder) Expr {
	return Placeholder{Index: h.Push(v.v)}
}

// joinSQL renders exprs joined by sep.
func joinSQL(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}

// ============================================================================
// Leaf nodes
// ============================================================================

// Placeholder is a bound argument, rendered as $N.
type Placeholder struct {
	Index args.Index
}

func (p Placeholder) SQL() string { return p.Index.SQL() }
func (Placeholder) isExpr() {}

// ColumnRef references a column. It renders table-qualified unless a Prefix
// is set, in which case the prefix replaces the table name
// (e.g. EXCLUDED.email).
type ColumnRef struct {
	Column table.DynColumn
	Prefix string
}

// Col references c.
func Col(c table.Column) ColumnRef {
	return ColumnRef{Column: table.Dyn(c)}
}

// SQL renders the qualified column name.
func (c ColumnRef) SQL() string {
	if c.Prefix != "" {
		return c.Column.WithPrefix(c.Prefix)
	}
	return c.Column.FullName()
}

func (ColumnRef) isExpr() {}

// Lower implements Lowerer. Columns carry no arguments.
func (c ColumnRef) Lower(*args.Holder) Expr { return c }

// ColumnName returns the bare column name, for contexts where table
// qualification is invalid.
func (c ColumnRef) ColumnName() string { return c.Column.ColumnName() }

// WithPrefix returns a copy of c rendered as prefix.column.
func (c ColumnRef) WithPrefix(prefix string) ColumnRef {
	c.Prefix = prefix
	return c
}

// Keyword is a bare SQL keyword.
type Keyword string

// Common keywords.
const (
	Default  Keyword = "DEFAULT"
	Null     Keyword = "NULL"
	From     Keyword = "FROM"
	SelectKW Keyword = "SELECT"
	WhereKW  Keyword = "WHERE"
	Distinct Keyword = "DISTINCT"
)

func (k Keyword) SQL() string { return string(k) }
func (Keyword) isExpr() {}

// Lower implements Lowerer.
func (k Keyword) Lower(*args.Holder) Expr { return k }

// Raw is trusted SQL text rendered verbatim. Never build a Raw from user
// input.
type Raw string

func (r Raw) SQL() string { return string(r) }
func (Raw) isExpr() {}

// Lower implements Lowerer.
func (r Raw) Lower(*args.Holder) Expr { return r }

// Empty renders nothing. Statement builders drop it from clause lists.
type Empty struct{}

func (Empty) SQL() string { return "" }
func (Empty) isExpr() {}

// Lower implements Lowerer.
func (e Empty) Lower(*args.Holder) Expr { return e }

// IsEmpty reports whether e renders nothing.
func IsEmpty(e Expr) bool {
	if e == nil {
		return true
	}
	_, ok := e.(Empty)
	return ok
}

// Wildcard renders * or prefix.*.
type Wildcard struct {
	Prefix string
}

// Star is the unqualified wildcard.
var Star = Wildcard{}

func (w Wildcard) SQL() string {
	if w.Prefix == "" {
		return "*"
	}
	return w.Prefix + ".*"
}

func (Wildcard) isExpr() {}

// Lower implements Lowerer.
func (w Wildcard) Lower(*args.Holder) Expr { return w }

// ============================================================================
// Composite nodes
// ============================================================================

// Func is a function call: NAME(arg1, arg2).
type Func struct {
	Name string
	Args []Expr
}

func (f Func) SQL() string { return f.Name + "(" + joinSQL(f.Args, ", ") + ")" }
func (Func) isExpr() {}

// Alias renders inner AS name.
type Alias struct {
	Expr Expr
	Name string
}

func (a Alias) SQL() string { return a.Expr.SQL() + " AS " + a.Name }
func (Alias) isExpr() {}

// Cast renders inner::type.
type Cast struct {
	Expr Expr
	Type string
}

func (c Cast) SQL() string { return c.Expr.SQL() + "::" + c.Type }
func (Cast) isExpr() {}

// Multi renders a sequence of expressions joined by Sep.
// An empty Sep means a single space.
type Multi struct {
	Exprs []Expr
	Sep   string
}

func (m Multi) SQL() string {
	sep := m.Sep
	if sep == "" {
		sep = " "
	}
	return joinSQL(m.Exprs, sep)
}

func (Multi) isExpr() {}
