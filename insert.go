package pgquery

import (
	"reflect"
	"strings"

	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// InsertBuilder builds a single-row INSERT statement.
//
//	q, err := pgquery.Insert(users).
//		Set(userEmail, "a@example.com").
//		Set(userName, "alice").
//		OnConflict(expr.UpdateToExcluded([]table.Column{userEmail}, userName)).
//		Returning(expr.ReturningAll()).
//		Build()
//	// INSERT INTO users (email, name) VALUES ($1, $2) ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name RETURNING *;
type InsertBuilder struct {
	stmt
	table     *table.Table
	columns   []table.DynColumn
	values    []expr.Lowerer
	conflict  *expr.Conflict
	returning expr.Returning
}

// Insert starts an INSERT into t.
func Insert(t *table.Table) *InsertBuilder {
	return &InsertBuilder{stmt: newStmt(), table: t}
}

// Set sets col to v. Values are bound in call order.
func (b *InsertBuilder) Set(col table.Column, v any) *InsertBuilder {
	b.columns = append(b.columns, table.Dyn(col))
	b.values = append(b.values, expr.Arg(v))
	return b
}

// SetOptional sets col to v unless v is nil or a nil pointer, so the
// column falls back to its database default.
func (b *InsertBuilder) SetOptional(col table.Column, v any) *InsertBuilder {
	if isNil(v) {
		return b
	}
	return b.Set(col, v)
}

// OnConflict adds an ON CONFLICT clause.
func (b *InsertBuilder) OnConflict(c expr.Conflict) *InsertBuilder {
	b.conflict = &c
	return b
}

// Returning adds a RETURNING clause.
func (b *InsertBuilder) Returning(r expr.Returning) *InsertBuilder {
	b.returning = r
	return b
}

// Build renders the statement.
func (b *InsertBuilder) Build() (Query, error) {
	if err := b.check(); err != nil {
		return Query{}, err
	}
	if len(b.columns) == 0 {
		return Query{}, ErrNoColumns
	}
	if err := checkConflict(b.conflict); err != nil {
		return Query{}, err
	}

	values := make([]expr.Expr, len(b.values))
	for i, v := range b.values {
		values[i] = b.lower(v)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table.Name())
	sb.WriteString(" (")
	sb.WriteString(columnNames(b.columns))
	sb.WriteString(") VALUES ")
	sb.WriteString(row(values))
	sb.WriteString(b.tail(b.conflict, b.returning))
	return b.finish(sb.String()), nil
}

// tail lowers and renders the optional ON CONFLICT and RETURNING clauses.
func (s *stmt) tail(c *expr.Conflict, r expr.Returning) string {
	var out string
	if c != nil {
		out += clause(c.Lower(s.h).SQL())
	}
	return out + clause(r.SQL())
}

func checkConflict(c *expr.Conflict) error {
	if c != nil && c.Target().IsZero() {
		return ErrMissingConflictTarget
	}
	return nil
}

// row renders (v1, v2).
func row(values []expr.Expr) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.SQL()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
