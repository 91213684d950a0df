package expr

import "github.com/pthm/pgquery/pkg/args"

// Filter is an immutable boolean condition builder.
//
// Operands may be any value accepted by Arg: columns, other builders, nodes
// or plain values (which become bound arguments). Combinators return new
// Filters and never re-associate: a.And(b).And(c) renders
// "a AND b AND c" as a left-leaning tree, and only Grouped adds parentheses.
//
// The zero Filter lowers to Empty and drops out of AND/OR chains and WHERE
// clauses.
type Filter struct {
	lower LowerFunc
}

// NewFilter wraps a lowering function as a Filter.
func NewFilter(fn LowerFunc) Filter {
	return Filter{lower: fn}
}

// Lower implements Lowerer.
func (f Filter) Lower(h *args.Holder) Expr {
	if f.lower == nil {
		return Empty{}
	}
	return f.lower(h)
}

// IsZero reports whether f carries no condition.
func (f Filter) IsZero() bool { return f.lower == nil }

// And returns f AND other.
func (f Filter) And(other any) Filter {
	return f.logical(And, other)
}

// Or returns f OR other.
func (f Filter) Or(other any) Filter {
	return f.logical(Or, other)
}

func (f Filter) logical(op LogicalOp, other any) Filter {
	right := Arg(other)
	return Filter{lower: func(h *args.Holder) Expr {
		l := f.Lower(h)
		r := right.Lower(h)
		return JoinConditions(op, l, r)
	}}
}

// Not returns NOT f.
func (f Filter) Not() Filter {
	return Filter{lower: func(h *args.Holder) Expr {
		return NotExpr{Expr: f.Lower(h)}
	}}
}

// Grouped returns (f).
func (f Filter) Grouped() Filter {
	return Filter{lower: func(h *args.Holder) Expr {
		return GroupedExpr{Expr: f.Lower(h)}
	}}
}

// Collate returns f COLLATE "collation".
func (f Filter) Collate(collation string) Filter {
	return Filter{lower: func(h *args.Holder) Expr {
		return CollateExpr{Expr: f.Lower(h), Collation: collation}
	}}
}

// ============================================================================
// Constructors
// ============================================================================

// Compare builds left OP right. Left is lowered before right.
func Compare(op CompareOp, left, right any) Filter {
	l, r := Arg(left), Arg(right)
	return Filter{lower: func(h *args.Holder) Expr {
		le := l.Lower(h)
		re := r.Lower(h)
		return CompareExpr{Op: op, Left: le, Right: re}
	}}
}

// Equals builds left = right.
func Equals(left, right any) Filter { return Compare(OpEquals, left, right) }

// NotEquals builds left != right.
func NotEquals(left, right any) Filter { return Compare(OpNotEquals, left, right) }

// Like builds left LIKE right.
func Like(left, right any) Filter { return Compare(OpLike, left, right) }

// ILike builds left ILIKE right.
func ILike(left, right any) Filter { return Compare(OpILike, left, right) }

// LessThan builds left < right.
func LessThan(left, right any) Filter { return Compare(OpLessThan, left, right) }

// LessThanOrEquals builds left <= right.
func LessThanOrEquals(left, right any) Filter {
	return Compare(OpLessThanOrEquals, left, right)
}

// GreaterThan builds left > right.
func GreaterThan(left, right any) Filter { return Compare(OpGreaterThan, left, right) }

// GreaterThanOrEquals builds left >= right.
func GreaterThanOrEquals(left, right any) Filter {
	return Compare(OpGreaterThanOrEquals, left, right)
}

// ArrayContains builds left @> right.
func ArrayContains(left, right any) Filter { return Compare(OpArrayContains, left, right) }

// ArrayContainedBy builds left <@ right.
func ArrayContainedBy(left, right any) Filter {
	return Compare(OpArrayContainedBy, left, right)
}

// ArrayOverlap builds left && right.
func ArrayOverlap(left, right any) Filter { return Compare(OpArrayOverlap, left, right) }

// EqualsAny builds left = ANY(right). Right is usually a bound slice.
func EqualsAny(left, right any) Filter {
	return Compare(OpEquals, left, Any(right))
}

// Between builds value BETWEEN start AND end, lowered in that order.
func Between(v, start, end any) Filter {
	ve, se, ee := Arg(v), Arg(start), Arg(end)
	return Filter{lower: func(h *args.Holder) Expr {
		val := ve.Lower(h)
		s := se.Lower(h)
		e := ee.Lower(h)
		return BetweenExpr{Value: val, Start: s, End: e}
	}}
}

// IsNull builds v IS NULL.
func IsNull(v any) Filter { return nullCheck(v, false) }

// IsNotNull builds v IS NOT NULL.
func IsNotNull(v any) Filter { return nullCheck(v, true) }

func nullCheck(v any, not bool) Filter {
	l := Arg(v)
	return Filter{lower: func(h *args.Holder) Expr {
		return NullCheck{Expr: l.Lower(h), Not: not}
	}}
}

// Not builds NOT cond.
func Not(cond any) Filter {
	c := Arg(cond)
	return Filter{lower: func(h *args.Holder) Expr {
		return NotExpr{Expr: c.Lower(h)}
	}}
}

// AndAll combines conds with AND, left to right.
func AndAll(conds ...any) Filter { return combine(And, conds) }

// OrAll combines conds with OR, left to right.
func OrAll(conds ...any) Filter { return combine(Or, conds) }

func combine(op LogicalOp, conds []any) Filter {
	if len(conds) == 0 {
		return Filter{}
	}
	ls := make([]Lowerer, len(conds))
	for i, c := range conds {
		ls[i] = Arg(c)
	}
	return Filter{lower: func(h *args.Holder) Expr {
		exprs := make([]Expr, len(ls))
		for i, l := range ls {
			exprs[i] = l.Lower(h)
		}
		return JoinConditions(op, exprs...)
	}}
}

// ============================================================================
// Column shorthands
// ============================================================================

// Equals builds c = v.
func (c ColumnRef) Equals(v any) Filter { return Equals(c, v) }

// NotEquals builds c != v.
func (c ColumnRef) NotEquals(v any) Filter { return NotEquals(c, v) }

// Like builds c LIKE v.
func (c ColumnRef) Like(v any) Filter { return Like(c, v) }

// ILike builds c ILIKE v.
func (c ColumnRef) ILike(v any) Filter { return ILike(c, v) }

// LessThan builds c < v.
func (c ColumnRef) LessThan(v any) Filter { return LessThan(c, v) }

// LessThanOrEquals builds c <= v.
func (c ColumnRef) LessThanOrEquals(v any) Filter { return LessThanOrEquals(c, v) }

// GreaterThan builds c > v.
func (c ColumnRef) GreaterThan(v any) Filter { return GreaterThan(c, v) }

// GreaterThanOrEquals builds c >= v.
func (c ColumnRef) GreaterThanOrEquals(v any) Filter { return GreaterThanOrEquals(c, v) }

// EqualsAny builds c = ANY(v).
func (c ColumnRef) EqualsAny(v any) Filter { return EqualsAny(c, v) }

// ArrayContains builds c @> v.
func (c ColumnRef) ArrayContains(v any) Filter { return ArrayContains(c, v) }

// ArrayContainedBy builds c <@ v.
func (c ColumnRef) ArrayContainedBy(v any) Filter { return ArrayContainedBy(c, v) }

// ArrayOverlap builds c && v.
func (c ColumnRef) ArrayOverlap(v any) Filter { return ArrayOverlap(c, v) }

// Between builds c BETWEEN start AND end.
func (c ColumnRef) Between(start, end any) Filter { return Between(c, start, end) }

// IsNull builds c IS NULL.
func (c ColumnRef) IsNull() Filter { return IsNull(c) }

// IsNotNull builds c IS NOT NULL.
func (c ColumnRef) IsNotNull() Filter { return IsNotNull(c) }
