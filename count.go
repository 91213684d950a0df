package pgquery

import (
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// CountBuilder builds SELECT COUNT(1) FROM t [WHERE ...].
type CountBuilder struct {
	stmt
	table *table.Table
	where where
}

// Count starts a row count over t.
func Count(t *table.Table) *CountBuilder {
	return &CountBuilder{stmt: newStmt(), table: t}
}

// Where appends conditions, combined with AND.
func (b *CountBuilder) Where(conds ...any) *CountBuilder {
	b.where = b.where.add(conds...)
	return b
}

// Build renders the statement.
func (b *CountBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	cond := b.where.lower(b.h)
	return b.finish("SELECT COUNT(1) FROM " + b.table.Name() + expr.WhereSQL(cond)), nil
}

// ExistsBuilder builds SELECT EXISTS (SELECT 1 FROM t [WHERE ...]).
type ExistsBuilder struct {
	stmt
	table *table.Table
	where where
}

// Exists starts an existence check over t.
func Exists(t *table.Table) *ExistsBuilder {
	return &ExistsBuilder{stmt: newStmt(), table: t}
}

// Where appends conditions, combined with AND.
func (b *ExistsBuilder) Where(conds ...any) *ExistsBuilder {
	b.where = b.where.add(conds...)
	return b
}

// Build renders the statement.
func (b *ExistsBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	cond := b.where.lower(b.h)
	return b.finish("SELECT EXISTS (SELECT 1 FROM " + b.table.Name() + expr.WhereSQL(cond) + ")"), nil
}
