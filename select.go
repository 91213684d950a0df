package pgquery

import (
	"strings"

	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// SelectBuilder builds a SELECT statement.
//
//	q, err := pgquery.Select(users).
//		Columns(userID, userEmail).
//		Where(expr.Col(userAge).GreaterThan(18)).
//		OrderBy(expr.Desc(userCreatedAt)).
//		Limit(10).
//		Build()
//	// SELECT users.id, users.email FROM users WHERE users.age > $1 ORDER BY users.created_at DESC LIMIT 10;
//
// Clauses are lowered in textual order when Build is called, so placeholder
// numbers increase from left to right regardless of call order.
type SelectBuilder struct {
	stmt
	table      *table.Table
	columns    []expr.Lowerer
	joins      []expr.Join
	where      where
	order      []expr.OrderTerm
	limit      int
	offset     int
	totalAlias string
}

// Select starts a SELECT over t.
func Select(t *table.Table) *SelectBuilder {
	return &SelectBuilder{stmt: newStmt(), table: t}
}

// Columns appends columns to the select list.
func (b *SelectBuilder) Columns(cols ...table.Column) *SelectBuilder {
	for _, c := range cols {
		b.columns = append(b.columns, expr.Col(c))
	}
	return b
}

// Column appends a single column.
func (b *SelectBuilder) Column(c table.Column) *SelectBuilder {
	return b.Columns(c)
}

// Expr appends arbitrary expressions to the select list.
func (b *SelectBuilder) Expr(vs ...any) *SelectBuilder {
	for _, v := range vs {
		b.columns = append(b.columns, expr.Arg(v))
	}
	return b
}

// Where appends conditions. All conditions are combined with AND.
func (b *SelectBuilder) Where(conds ...any) *SelectBuilder {
	b.where = b.where.add(conds...)
	return b
}

// Join appends a join. Columns projected by the join follow the select list.
func (b *SelectBuilder) Join(j expr.Join) *SelectBuilder {
	b.joins = append(b.joins, j)
	return b
}

// InnerJoin appends INNER JOIN tableName ON on.
func (b *SelectBuilder) InnerJoin(tableName string, on any) *SelectBuilder {
	return b.Join(expr.InnerJoin(tableName, on))
}

// LeftJoin appends LEFT JOIN tableName ON on.
func (b *SelectBuilder) LeftJoin(tableName string, on any) *SelectBuilder {
	return b.Join(expr.LeftJoin(tableName, on))
}

// JoinRelation joins the target of rel on its foreign key.
func (b *SelectBuilder) JoinRelation(kind expr.JoinKind, rel table.Relation) *SelectBuilder {
	return b.Join(expr.JoinOn(kind, rel))
}

// OrderBy appends ORDER BY terms.
func (b *SelectBuilder) OrderBy(terms ...expr.OrderTerm) *SelectBuilder {
	b.order = append(b.order, terms...)
	return b
}

// Limit sets LIMIT. Zero removes it.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// Offset sets OFFSET. Zero removes it.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = n
	return b
}

// Page sets LIMIT and OFFSET from p.
func (b *SelectBuilder) Page(p PageParams) *SelectBuilder {
	return b.Limit(p.Limit()).Offset(p.Offset())
}

// WithTotalCount appends COUNT(*) OVER() AS alias to the select list, so
// every row carries the unpaginated row count.
func (b *SelectBuilder) WithTotalCount(alias string) *SelectBuilder {
	b.totalAlias = alias
	return b
}

// Build renders the statement.
func (b *SelectBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}

	cols := make([]expr.Expr, 0, len(b.columns)+1)
	if len(b.columns) == 0 {
		cols = append(cols, expr.Star)
	}
	for _, c := range b.columns {
		cols = append(cols, b.lower(c))
	}
	joinCols, joins := expr.LowerJoins(b.h, b.joins)
	cols = append(cols, joinCols...)
	if b.totalAlias != "" {
		cols = append(cols, b.lower(expr.As(expr.CountAll().Over(), b.totalAlias)))
	}
	cond := b.where.lower(b.h)
	orders := expr.LowerOrders(b.h, b.order)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(expr.ColumnsSQL(cols))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table.Name())
	sb.WriteString(expr.JoinsSQL(joins))
	sb.WriteString(expr.WhereSQL(cond))
	sb.WriteString(expr.OrderBySQL(orders))
	sb.WriteString(expr.LimitSQL(b.limit))
	sb.WriteString(expr.OffsetSQL(b.offset))
	return b.finish(sb.String()), nil
}
