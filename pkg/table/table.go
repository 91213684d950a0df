package table

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumn is returned when a table declares a column twice.
	ErrDuplicateColumn = errors.New("table: duplicate column")

	// ErrEmptyName is returned when a table or column has no name.
	ErrEmptyName = errors.New("table: empty name")

	// ErrMultiplePrimaryKeys is returned when more than one column is marked
	// as the primary key.
	ErrMultiplePrimaryKeys = errors.New("table: multiple primary keys")
)

// ColumnSpec declares a column when building a Table.
type ColumnSpec struct {
	Name       string
	PrimaryKey bool
}

// Col declares a regular column.
func Col(name string) ColumnSpec { return ColumnSpec{Name: name} }

// PK declares the primary key column.
func PK(name string) ColumnSpec { return ColumnSpec{Name: name, PrimaryKey: true} }

// Table is an immutable table descriptor: a name and an ordered set of
// columns belonging to it.
type Table struct {
	name    string
	columns []Ref
	index   map[string]int
	pk      int
}

// New builds a table descriptor from column declarations, in order.
func New(name string, specs ...ColumnSpec) (*Table, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Table{
		name:    name,
		columns: make([]Ref, 0, len(specs)),
		index:   make(map[string]int, len(specs)),
		pk:      -1,
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: column of %s", ErrEmptyName, name)
		}
		if _, dup := t.index[s.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, name, s.Name)
		}
		if s.PrimaryKey {
			if t.pk >= 0 {
				return nil, fmt.Errorf("%w: %s has %s and %s", ErrMultiplePrimaryKeys,
					name, t.columns[t.pk].Name, s.Name)
			}
			t.pk = len(t.columns)
		}
		t.index[s.Name] = len(t.columns)
		t.columns = append(t.columns, Ref{Table: name, Name: s.Name, PrimaryKey: s.PrimaryKey})
	}
	return t, nil
}

// MustNew is like New but panics on invalid declarations.
// Intended for package-level vars in generated code.
func MustNew(name string, specs ...ColumnSpec) *Table {
	t, err := New(name, specs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *Table) String() string { return t.name }

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.columns) }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Ref {
	out := make([]Ref, len(t.columns))
	copy(out, t.columns)
	return out
}

// AllDyn returns the columns in declaration order as DynColumns.
func (t *Table) AllDyn() []DynColumn {
	return DynAll(t.columns...)
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Ref, bool) {
	i, ok := t.index[name]
	if !ok {
		return Ref{}, false
	}
	return t.columns[i], true
}

// MustColumn is like Column but panics when the column does not exist.
func (t *Table) MustColumn(name string) Ref {
	c, ok := t.Column(name)
	if !ok {
		panic(fmt.Sprintf("table: %s has no column %q", t.name, name))
	}
	return c
}

// Has reports whether c belongs to t.
func (t *Table) Has(c Column) bool {
	if c.TableName() != t.name {
		return false
	}
	_, ok := t.index[c.ColumnName()]
	return ok
}

// Position returns the declaration index of c, or -1 if c is not a column
// of t.
func (t *Table) Position(c Column) int {
	if !t.Has(c) {
		return -1
	}
	return t.index[c.ColumnName()]
}

// PrimaryKey returns the primary key column, if one was declared.
func (t *Table) PrimaryKey() (Ref, bool) {
	if t.pk < 0 {
		return Ref{}, false
	}
	return t.columns[t.pk], true
}

// Relation links a column of one table to a column of another, typically a
// foreign key. It is used to derive join conditions.
type Relation struct {
	From Ref
	To   Ref
}

// NewRelation builds a relation between two columns.
func NewRelation(from, to Ref) Relation {
	return Relation{From: from, To: to}
}

// Reverse returns the relation seen from the other side.
func (r Relation) Reverse() Relation {
	return Relation{From: r.To, To: r.From}
}

// String renders the relation as "from -> to".
func (r Relation) String() string {
	return r.From.FullName() + " -> " + r.To.FullName()
}
