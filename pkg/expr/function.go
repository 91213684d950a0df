package expr

import "github.com/pthm/pgquery/pkg/args"

// FuncBuilder builds a function call whose arguments are lowered in order.
type FuncBuilder struct {
	name string
	args []Lowerer
}

// Function builds NAME(args...).
func Function(name string, fnArgs ...any) FuncBuilder {
	ls := make([]Lowerer, len(fnArgs))
	for i, a := range fnArgs {
		ls[i] = Arg(a)
	}
	return FuncBuilder{name: name, args: ls}
}

// Lower implements Lowerer.
func (f FuncBuilder) Lower(h *args.Holder) Expr {
	out := make([]Expr, len(f.args))
	for i, a := range f.args {
		out[i] = a.Lower(h)
	}
	return Func{Name: f.name, Args: out}
}

// As aliases the call.
func (f FuncBuilder) As(name string) Lowerer { return As(f, name) }

// Over appends OVER() to the call, e.g. COUNT(*) OVER().
func (f FuncBuilder) Over() Lowerer { return Seq(f, Over()) }

// Now builds NOW().
func Now() FuncBuilder { return Function("NOW") }

// Count builds COUNT(v).
func Count(v any) FuncBuilder { return Function("COUNT", v) }

// CountAll builds COUNT(*).
func CountAll() FuncBuilder { return Function("COUNT", Star) }

// Over builds an empty window clause, OVER().
func Over() FuncBuilder { return Function("OVER") }

// Lowercase builds LOWER(v).
func Lowercase(v any) FuncBuilder { return Function("LOWER", v) }

// Uppercase builds UPPER(v).
func Uppercase(v any) FuncBuilder { return Function("UPPER", v) }

// Sum builds SUM(v).
func Sum(v any) FuncBuilder { return Function("SUM", v) }

// Avg builds AVG(v).
func Avg(v any) FuncBuilder { return Function("AVG", v) }

// ArrayAgg builds ARRAY_AGG(v).
func ArrayAgg(v any) FuncBuilder { return Function("ARRAY_AGG", v) }

// Array builds ARRAY(v), usually over a sub-select.
func Array(v any) FuncBuilder { return Function("ARRAY", v) }

// Any builds ANY(v).
func Any(v any) FuncBuilder { return Function("ANY", v) }

// Coalesce builds COALESCE(vs...).
func Coalesce(vs ...any) FuncBuilder { return Function("COALESCE", vs...) }

// ExtractField is a date/time field accepted by EXTRACT.
type ExtractField string

// EXTRACT fields.
const (
	Month   ExtractField = "MONTH"
	Day     ExtractField = "DAY"
	Year    ExtractField = "YEAR"
	Century ExtractField = "CENTURY"
	Hour    ExtractField = "HOUR"
	Minute  ExtractField = "MINUTE"
	Second  ExtractField = "SECOND"
	DOY     ExtractField = "DOY"
)

// Extract builds EXTRACT(FIELD FROM v).
func Extract(field ExtractField, v any) FuncBuilder {
	return Function("EXTRACT", Seq(Keyword(field), From, v))
}

// ============================================================================
// Wrappers
// ============================================================================

// As builds v AS name.
func As(v any, name string) Lowerer {
	l := Arg(v)
	return LowerFunc(func(h *args.Holder) Expr {
		return Alias{Expr: l.Lower(h), Name: name}
	})
}

// CastTo builds v::typ.
func CastTo(v any, typ string) Lowerer {
	l := Arg(v)
	return LowerFunc(func(h *args.Holder) Expr {
		return Cast{Expr: l.Lower(h), Type: typ}
	})
}

// AsDate builds v::DATE.
func AsDate(v any) Lowerer { return CastTo(v, "DATE") }

// AsText builds v::TEXT.
func AsText(v any) Lowerer { return CastTo(v, "TEXT") }

// Seq builds a space-separated sequence of expressions.
func Seq(vs ...any) Lowerer { return SeqSep(" ", vs...) }

// SeqSep builds a sequence of expressions joined by sep.
func SeqSep(sep string, vs ...any) Lowerer {
	return LowerFunc(func(h *args.Holder) Expr {
		return Multi{Exprs: LowerAll(h, vs...), Sep: sep}
	})
}

// As aliases the column.
func (c ColumnRef) As(name string) Lowerer { return As(c, name) }
