package expr

import (
	"strconv"
	"strings"

	"github.com/pthm/pgquery/pkg/args"
	"github.com/pthm/pgquery/pkg/table"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Order is a lowered ORDER BY term.
type Order struct {
	Expr Expr
	Dir  Direction
}

// SQL renders "expr DIR". An unset direction renders ASC.
func (o Order) SQL() string {
	dir := o.Dir
	if dir == "" {
		dir = Ascending
	}
	return o.Expr.SQL() + " " + string(dir)
}

// OrderTerm is an ORDER BY term before lowering.
type OrderTerm struct {
	v   Lowerer
	dir Direction
}

// Asc orders by v ascending.
func Asc(v any) OrderTerm { return OrderTerm{v: Arg(v), dir: Ascending} }

// Desc orders by v descending.
func Desc(v any) OrderTerm { return OrderTerm{v: Arg(v), dir: Descending} }

// OrderBy orders by v in direction dir.
func OrderBy(v any, dir Direction) OrderTerm { return OrderTerm{v: Arg(v), dir: dir} }

// Lower lowers the ordered expression.
func (o OrderTerm) Lower(h *args.Holder) Order {
	return Order{Expr: o.v.Lower(h), Dir: o.dir}
}

// Asc orders by the column ascending.
func (c ColumnRef) Asc() OrderTerm { return Asc(c) }

// Desc orders by the column descending.
func (c ColumnRef) Desc() OrderTerm { return Desc(c) }

// LowerOrders lowers terms in order.
func LowerOrders(h *args.Holder, terms []OrderTerm) []Order {
	out := make([]Order, len(terms))
	for i, t := range terms {
		out[i] = t.Lower(h)
	}
	return out
}

// ============================================================================
// Joins
// ============================================================================

// JoinKind is the join type keyword.
type JoinKind string

// Join kinds.
const (
	JoinInner      JoinKind = "INNER JOIN"
	JoinLeft       JoinKind = "LEFT JOIN"
	JoinRight      JoinKind = "RIGHT JOIN"
	JoinFull       JoinKind = "FULL JOIN"
	JoinLeftOuter  JoinKind = "LEFT OUTER JOIN"
	JoinRightOuter JoinKind = "RIGHT OUTER JOIN"
	JoinFullOuter  JoinKind = "FULL OUTER JOIN"
)

// JoinClause is a lowered join: KIND table ON cond.
type JoinClause struct {
	Kind  JoinKind
	Table string
	On    Expr
}

// SQL renders the join clause.
func (j JoinClause) SQL() string {
	return string(j.Kind) + " " + j.Table + " ON " + j.On.SQL()
}

// Join builds a join against a table. A join always carries exactly one ON
// condition, supplied at construction. Columns added with Select are
// projected by the enclosing SELECT.
type Join struct {
	kind    JoinKind
	table   string
	on      Lowerer
	columns []Lowerer
}

// NewJoin builds a join of the given kind.
func NewJoin(kind JoinKind, tableName string, on any) Join {
	return Join{kind: kind, table: tableName, on: Arg(on)}
}

// InnerJoin builds an INNER JOIN.
func InnerJoin(tableName string, on any) Join { return NewJoin(JoinInner, tableName, on) }

// LeftJoin builds a LEFT JOIN.
func LeftJoin(tableName string, on any) Join { return NewJoin(JoinLeft, tableName, on) }

// RightJoin builds a RIGHT JOIN.
func RightJoin(tableName string, on any) Join { return NewJoin(JoinRight, tableName, on) }

// FullJoin builds a FULL JOIN.
func FullJoin(tableName string, on any) Join { return NewJoin(JoinFull, tableName, on) }

// LeftOuterJoin builds a LEFT OUTER JOIN.
func LeftOuterJoin(tableName string, on any) Join { return NewJoin(JoinLeftOuter, tableName, on) }

// RightOuterJoin builds a RIGHT OUTER JOIN.
func RightOuterJoin(tableName string, on any) Join {
	return NewJoin(JoinRightOuter, tableName, on)
}

// FullOuterJoin builds a FULL OUTER JOIN.
func FullOuterJoin(tableName string, on any) Join { return NewJoin(JoinFullOuter, tableName, on) }

// JoinOn joins the target table of rel, matching rel.From = rel.To.
func JoinOn(kind JoinKind, rel table.Relation) Join {
	return NewJoin(kind, rel.To.Table, Equals(rel.From, rel.To))
}

// Select returns a copy of j that also projects cols.
func (j Join) Select(cols ...any) Join {
	ls := make([]Lowerer, 0, len(j.columns)+len(cols))
	ls = append(ls, j.columns...)
	for _, c := range cols {
		ls = append(ls, Arg(c))
	}
	j.columns = ls
	return j
}

// Table returns the joined table name.
func (j Join) Table() string { return j.table }

// Lower lowers the projected columns first and the ON condition second.
func (j Join) Lower(h *args.Holder) ([]Expr, JoinClause) {
	cols := j.lowerColumns(h)
	return cols, j.lowerOn(h)
}

func (j Join) lowerColumns(h *args.Holder) []Expr {
	out := make([]Expr, len(j.columns))
	for i, c := range j.columns {
		out[i] = c.Lower(h)
	}
	return out
}

func (j Join) lowerOn(h *args.Holder) JoinClause {
	return JoinClause{Kind: j.kind, Table: j.table, On: j.on.Lower(h)}
}

// LowerJoins lowers a list of joins in textual order: every projected column
// (which renders in the SELECT list) before any ON condition.
func LowerJoins(h *args.Holder, joins []Join) ([]Expr, []JoinClause) {
	var cols []Expr
	for _, j := range joins {
		cols = append(cols, j.lowerColumns(h)...)
	}
	clauses := make([]JoinClause, len(joins))
	for i, j := range joins {
		clauses[i] = j.lowerOn(h)
	}
	return cols, clauses
}

// ============================================================================
// Clause rendering shared with statement builders
// ============================================================================

// JoinsSQL renders joins with a leading space, or "" when there are none.
func JoinsSQL(joins []JoinClause) string {
	var sb strings.Builder
	for _, j := range joins {
		sb.WriteString(" ")
		sb.WriteString(j.SQL())
	}
	return sb.String()
}

// WhereSQL renders " WHERE cond", or "" when cond is empty.
func WhereSQL(cond Expr) string {
	if IsEmpty(cond) {
		return ""
	}
	return " WHERE " + cond.SQL()
}

// OrderBySQL renders " ORDER BY a ASC, b DESC", or "" with no terms.
func OrderBySQL(orders []Order) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = o.SQL()
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// LimitSQL renders " LIMIT n" for positive n.
func LimitSQL(n int) string {
	if n <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(n)
}

// OffsetSQL renders " OFFSET n" for positive n.
func OffsetSQL(n int) string {
	if n <= 0 {
		return ""
	}
	return " OFFSET " + strconv.Itoa(n)
}

// ColumnsSQL renders a SELECT list, or * when cols is empty.
func ColumnsSQL(cols []Expr) string {
	if len(cols) == 0 {
		return "*"
	}
	return joinSQL(cols, ", ")
}

// ============================================================================
// Sub-select
// ============================================================================

// Select is a parenthesized sub-select usable as an expression. A single
// column renders bare; several columns render as a row (a, b).
type Select struct {
	Columns []Expr
	From    string
	Joins   []JoinClause
	Where   Expr
	OrderBy []Order
	Limit   int
	Offset  int
}

func (s Select) SQL() string {
	var sb strings.Builder
	sb.WriteString("(SELECT ")
	if len(s.Columns) > 1 {
		sb.WriteString("(" + joinSQL(s.Columns, ", ") + ")")
	} else {
		sb.WriteString(ColumnsSQL(s.Columns))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.From)
	sb.WriteString(JoinsSQL(s.Joins))
	sb.WriteString(WhereSQL(s.Where))
	sb.WriteString(OrderBySQL(s.OrderBy))
	sb.WriteString(LimitSQL(s.Limit))
	sb.WriteString(OffsetSQL(s.Offset))
	sb.WriteString(")")
	return sb.String()
}

func (Select) isExpr() {}

// SelectExpr builds a sub-select. It is immutable: every method returns a
// modified copy.
//
//	expr.SelectFrom("another_table").
//		Columns(another.Phone).
//		Where(expr.Col(another.ID).Equals(1))
//	// (SELECT another_table.phone FROM another_table WHERE another_table.id = $1)
type SelectExpr struct {
	from    string
	columns []Lowerer
	joins   []Join
	where   []Lowerer
	order   []OrderTerm
	limit   int
	offset  int
}

// SelectFrom starts a sub-select over tableName.
func SelectFrom(tableName string) SelectExpr {
	return SelectExpr{from: tableName}
}

// Columns appends projected columns or expressions.
func (s SelectExpr) Columns(cols ...any) SelectExpr {
	ls := make([]Lowerer, 0, len(s.columns)+len(cols))
	ls = append(ls, s.columns...)
	for _, c := range cols {
		ls = append(ls, Arg(c))
	}
	s.columns = ls
	return s
}

// Join appends a join.
func (s SelectExpr) Join(j Join) SelectExpr {
	s.joins = appendClone(s.joins, j)
	return s
}

// Where appends conditions, combined with AND.
func (s SelectExpr) Where(conds ...any) SelectExpr {
	ls := make([]Lowerer, 0, len(s.where)+len(conds))
	ls = append(ls, s.where...)
	for _, c := range conds {
		ls = append(ls, Arg(c))
	}
	s.where = ls
	return s
}

// OrderBy appends ORDER BY terms.
func (s SelectExpr) OrderBy(terms ...OrderTerm) SelectExpr {
	s.order = appendClone(s.order, terms...)
	return s
}

// Limit sets LIMIT. Zero removes it.
func (s SelectExpr) Limit(n int) SelectExpr {
	s.limit = n
	return s
}

// Offset sets OFFSET. Zero removes it.
func (s SelectExpr) Offset(n int) SelectExpr {
	s.offset = n
	return s
}

// As aliases the sub-select.
func (s SelectExpr) As(name string) Lowerer { return As(s, name) }

// Lower lowers in textual order: columns, join columns, join conditions,
// WHERE, then ORDER BY.
func (s SelectExpr) Lower(h *args.Holder) Expr {
	cols := make([]Expr, 0, len(s.columns))
	for _, c := range s.columns {
		cols = append(cols, c.Lower(h))
	}
	joinCols, joins := LowerJoins(h, s.joins)
	cols = append(cols, joinCols...)

	conds := make([]Expr, len(s.where))
	for i, w := range s.where {
		conds[i] = w.Lower(h)
	}

	return Select{
		Columns: cols,
		From:    s.from,
		Joins:   joins,
		Where:   JoinConditions(And, conds...),
		OrderBy: LowerOrders(h, s.order),
		Limit:   s.limit,
		Offset:  s.offset,
	}
}

func appendClone[T any](s []T, vs ...T) []T {
	out := make([]T, 0, len(s)+len(vs))
	out = append(out, s...)
	return append(out, vs...)
}
