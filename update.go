package pgquery

import (
	"strings"

	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// UpdateBuilder builds an UPDATE statement.
//
// Unlike SELECT, arguments are allocated in call order: a Where called
// before Set binds its values first even though WHERE renders last.
//
//	q, err := pgquery.Update(users).
//		Where(expr.Col(userID).Equals(7)).
//		Set(userAge, 30).
//		Build()
//	// UPDATE users SET age = $2 WHERE users.id = $1;
type UpdateBuilder struct {
	stmt
	table     *table.Table
	steps     []updateStep
	sets      int
	returning expr.Returning
}

// updateStep is either a SET (column is set) or a WHERE condition.
type updateStep struct {
	column table.DynColumn
	value  expr.Lowerer
}

func (s updateStep) isSet() bool { return !s.column.IsZero() }

// Update starts an UPDATE of t.
func Update(t *table.Table) *UpdateBuilder {
	return &UpdateBuilder{stmt: newStmt(), table: t}
}

// Set appends col = v.
func (b *UpdateBuilder) Set(col table.Column, v any) *UpdateBuilder {
	b.steps = append(b.steps, updateStep{column: table.Dyn(col), value: expr.Arg(v)})
	b.sets++
	return b
}

// SetOptional appends col = v unless v is nil or a nil pointer.
func (b *UpdateBuilder) SetOptional(col table.Column, v any) *UpdateBuilder {
	if isNil(v) {
		return b
	}
	return b.Set(col, v)
}

// Where appends conditions, combined with AND.
func (b *UpdateBuilder) Where(conds ...any) *UpdateBuilder {
	for _, c := range conds {
		b.steps = append(b.steps, updateStep{value: expr.Arg(c)})
	}
	return b
}

// Returning adds a RETURNING clause.
func (b *UpdateBuilder) Returning(r expr.Returning) *UpdateBuilder {
	b.returning = r
	return b
}

// Build renders the statement.
func (b *UpdateBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	if b.sets == 0 {
		return Query{}, ErrNoColumns
	}

	sets := make([]expr.Assignment, 0, b.sets)
	var conds []expr.Expr
	for _, s := range b.steps {
		e := b.lower(s.value)
		if s.isSet() {
			sets = append(sets, expr.Assignment{Column: s.column, Value: e})
			continue
		}
		conds = append(conds, e)
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table.Name())
	sb.WriteString(" SET ")
	sb.WriteString(expr.AssignmentsSQL(sets))
	sb.WriteString(expr.WhereSQL(expr.JoinConditions(expr.And, conds...)))
	sb.WriteString(clause(b.returning.SQL()))
	return b.finish(sb.String()), nil
}
