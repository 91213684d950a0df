package pgquery

import (
	"fmt"
	"strings"

	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// Cell is one column value of a row passed to InsertManyBuilder.Row.
type Cell struct {
	Column table.Column
	Value  any
}

// CellOf pairs col with v.
func CellOf(col table.Column, v any) Cell {
	return Cell{Column: col, Value: v}
}

// InsertManyBuilder builds a multi-row INSERT. Every row lists all table
// columns in declaration order; cells a row does not set render DEFAULT.
//
//	q, err := pgquery.InsertMany(users).
//		Row(pgquery.CellOf(userEmail, "a@example.com")).
//		Row(pgquery.CellOf(userEmail, "b@example.com"), pgquery.CellOf(userName, "bob")).
//		Build()
//	// INSERT INTO users (id, email, name) VALUES (DEFAULT, $1, DEFAULT), (DEFAULT, $2, $3);
type InsertManyBuilder struct {
	stmt
	table     *table.Table
	rows      [][]expr.Lowerer
	conflict  *expr.Conflict
	returning expr.Returning
	err       error
}

// InsertMany starts a multi-row INSERT into t.
func InsertMany(t *table.Table) *InsertManyBuilder {
	return &InsertManyBuilder{stmt: newStmt(), table: t}
}

// Row appends a row keyed by column. Setting a column twice keeps the last
// value.
func (b *InsertManyBuilder) Row(cells ...Cell) *InsertManyBuilder {
	r := make([]expr.Lowerer, b.table.Len())
	for _, c := range cells {
		pos := b.table.Position(c.Column)
		if pos < 0 {
			b.fail(fmt.Errorf("%w: %s", ErrUnknownColumn, table.FullName(c.Column)))
			continue
		}
		r[pos] = expr.Arg(c.Value)
	}
	b.rows = append(b.rows, r)
	return b
}

// OrderedRow appends a row whose values follow the table's column order.
// Missing trailing values render DEFAULT.
func (b *InsertManyBuilder) OrderedRow(values ...any) *InsertManyBuilder {
	if len(values) > b.table.Len() {
		b.fail(fmt.Errorf("%w: %d values for %d columns of %s",
			ErrUnknownColumn, len(values), b.table.Len(), b.table.Name()))
		return b
	}
	r := make([]expr.Lowerer, b.table.Len())
	for i, v := range values {
		r[i] = expr.Arg(v)
	}
	b.rows = append(b.rows, r)
	return b
}

// OnConflict adds an ON CONFLICT clause.
func (b *InsertManyBuilder) OnConflict(c expr.Conflict) *InsertManyBuilder {
	b.conflict = &c
	return b
}

// Returning adds a RETURNING clause.
func (b *InsertManyBuilder) Returning(r expr.Returning) *InsertManyBuilder {
	b.returning = r
	return b
}

func (b *InsertManyBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build renders the statement.
func (b *InsertManyBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	if b.err != nil {
		return Query{}, b.err
	}
	if len(b.rows) == 0 {
		return Query{}, ErrNoRows
	}
	if err := checkConflict(b.conflict); err != nil {
		return Query{}, err
	}

	rows := make([]string, len(b.rows))
	for i, r := range b.rows {
		values := make([]expr.Expr, len(r))
		for j, v := range r {
			if v == nil {
				values[j] = expr.Default
				continue
			}
			values[j] = b.lower(v)
		}
		rows[i] = row(values)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table.Name())
	sb.WriteString(" (")
	sb.WriteString(columnNames(b.table.AllDyn()))
	sb.WriteString(") VALUES ")
	sb.WriteString(strings.Join(rows, ", "))
	sb.WriteString(b.tail(b.conflict, b.returning))
	return b.finish(sb.String()), nil
}
