package pgquery

import (
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// DeleteBuilder builds a DELETE statement. Without conditions it deletes
// every row.
type DeleteBuilder struct {
	stmt
	table     *table.Table
	where     where
	returning expr.Returning
}

// Delete starts a DELETE from t.
func Delete(t *table.Table) *DeleteBuilder {
	return &DeleteBuilder{stmt: newStmt(), table: t}
}

// Where appends conditions, combined with AND.
func (b *DeleteBuilder) Where(conds ...any) *DeleteBuilder {
	b.where = b.where.add(conds...)
	return b
}

// Returning adds a RETURNING clause.
func (b *DeleteBuilder) Returning(r expr.Returning) *DeleteBuilder {
	b.returning = r
	return b
}

// Build renders the statement.
func (b *DeleteBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	cond := b.where.lower(b.h)
	sql := "DELETE FROM " + b.table.Name() + expr.WhereSQL(cond) + clause(b.returning.SQL())
	return b.finish(sql), nil
}
