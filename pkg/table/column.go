// Package table describes tables and their columns.
//
// A column is identified by the pair (table name, column name). Every
// rendering of a column (bare, table-qualified, custom-prefixed) is derived
// from that pair, so the three forms always agree on the underlying name.
//
// Descriptors are normally produced once at startup, either by generated code
// (see pgquery generate client) or from a schema file (see pkg/schema), and
// are treated as immutable afterwards.
package table

import "strings"

// Column is implemented by anything that names a column of a table.
//
// Renderings are derived from these two methods with FullName and WithPrefix.
type Column interface {
	TableName() string
	ColumnName() string
}

// FullName returns the table-qualified name of c, e.g. "users.email".
// Columns without a table render as the bare column name.
func FullName(c Column) string {
	return WithPrefix(c, c.TableName())
}

// WithPrefix returns the column name of c qualified with prefix.
// An empty prefix yields the bare column name.
func WithPrefix(c Column, prefix string) string {
	if prefix == "" {
		return c.ColumnName()
	}
	return prefix + "." + c.ColumnName()
}

// Key is the identity of a column.
type Key struct {
	Table  string
	Column string
}

// String renders the key as "table.column".
func (k Key) String() string {
	if k.Table == "" {
		return k.Column
	}
	return k.Table + "." + k.Column
}

// KeyOf returns the identity key of c.
func KeyOf(c Column) Key {
	return Key{Table: c.TableName(), Column: c.ColumnName()}
}

// Ref is a concrete column descriptor.
type Ref struct {
	Table      string
	Name       string
	PrimaryKey bool
}

// TableName implements Column.
func (r Ref) TableName() string { return r.Table }

// ColumnName implements Column.
func (r Ref) ColumnName() string { return r.Name }

// FullName returns "table.column".
func (r Ref) FullName() string { return FullName(r) }

// WithPrefix returns "prefix.column".
func (r Ref) WithPrefix(prefix string) string { return WithPrefix(r, prefix) }

// String implements fmt.Stringer.
func (r Ref) String() string { return r.FullName() }

// DynColumn is a type-erased column. It lets columns of different concrete
// types, possibly from different tables, live in one ordered slice.
//
// Two DynColumns are equal when they name the same (table, column) pair,
// regardless of the concrete type they wrap.
type DynColumn struct {
	col Column
}

// Dyn wraps c. Wrapping a DynColumn returns it unchanged.
func Dyn(c Column) DynColumn {
	if d, ok := c.(DynColumn); ok {
		return d
	}
	return DynColumn{col: c}
}

// DynAll wraps every column in cols, preserving order.
func DynAll[C Column](cols ...C) []DynColumn {
	out := make([]DynColumn, len(cols))
	for i, c := range cols {
		out[i] = Dyn(c)
	}
	return out
}

// TableName implements Column.
func (d DynColumn) TableName() string {
	if d.col == nil {
		return ""
	}
	return d.col.TableName()
}

// ColumnName implements Column.
func (d DynColumn) ColumnName() string {
	if d.col == nil {
		return ""
	}
	return d.col.ColumnName()
}

// FullName returns "table.column".
func (d DynColumn) FullName() string { return FullName(d) }

// WithPrefix returns "prefix.column".
func (d DynColumn) WithPrefix(prefix string) string { return WithPrefix(d, prefix) }

// Key returns the identity of the wrapped column.
func (d DynColumn) Key() Key { return KeyOf(d) }

// Equal reports whether d and c name the same column.
func (d DynColumn) Equal(c Column) bool {
	if c == nil {
		return d.col == nil
	}
	return d.Key() == KeyOf(c)
}

// IsZero reports whether d wraps nothing.
func (d DynColumn) IsZero() bool { return d.col == nil }

// Unwrap returns the wrapped column.
func (d DynColumn) Unwrap() Column { return d.col }

// String implements fmt.Stringer.
func (d DynColumn) String() string { return d.FullName() }

// ConcatColumns joins the table-qualified names of cols with sep.
func ConcatColumns[C Column](cols []C, sep string) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = FullName(c)
	}
	return strings.Join(names, sep)
}

// ConcatColumnNames joins the bare names of cols with sep.
func ConcatColumnNames[C Column](cols []C, sep string) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.ColumnName()
	}
	return strings.Join(names, sep)
}
