package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New("test_table",
		PK("id"),
		Col("first_name"),
		Col("last_name"),
		Col("age"),
		Col("email"),
	)
	require.NoError(t, err)
	return tbl
}

func TestColumnRenderings(t *testing.T) {
	c := Ref{Table: "test_table", Name: "email"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"bare", c.ColumnName(), "email"},
		{"full", c.FullName(), "test_table.email"},
		{"prefix", c.WithPrefix("EXCLUDED"), "EXCLUDED.email"},
		{"empty prefix", c.WithPrefix(""), "email"},
		{"no table", FullName(Ref{Name: "email"}), "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

type customColumn int

func (customColumn) TableName() string { return "another_table" }
func (c customColumn) ColumnName() string {
	return [...]string{"id", "email"}[c]
}

func TestDynColumn(t *testing.T) {
	t.Run("preserves renderings", func(t *testing.T) {
		d := Dyn(customColumn(1))
		assert.Equal(t, "email", d.ColumnName())
		assert.Equal(t, "another_table.email", d.FullName())
		assert.Equal(t, "x.email", d.WithPrefix("x"))
	})

	t.Run("equality is by table and column", func(t *testing.T) {
		a := Dyn(customColumn(1))
		b := Dyn(Ref{Table: "another_table", Name: "email"})
		assert.True(t, a.Equal(b))
		assert.Equal(t, a.Key(), b.Key())

		other := Dyn(Ref{Table: "test_table", Name: "email"})
		assert.False(t, a.Equal(other))
	})

	t.Run("wrapping twice is a no-op", func(t *testing.T) {
		d := Dyn(customColumn(0))
		assert.Equal(t, d, Dyn(d))
	})

	t.Run("heterogeneous slice keeps order", func(t *testing.T) {
		cols := []DynColumn{
			Dyn(Ref{Table: "test_table", Name: "id"}),
			Dyn(customColumn(1)),
		}
		assert.Equal(t, "test_table.id, another_table.email", ConcatColumns(cols, ", "))
		assert.Equal(t, "id, email", ConcatColumnNames(cols, ", "))
	})
}

func TestNew(t *testing.T) {
	tbl := testTable(t)

	assert.Equal(t, "test_table", tbl.Name())
	assert.Equal(t, 5, tbl.Len())

	pk, ok := tbl.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "id", pk.Name)
	assert.True(t, pk.PrimaryKey)

	email, ok := tbl.Column("email")
	require.True(t, ok)
	assert.Equal(t, "test_table.email", email.FullName())
	assert.Equal(t, 4, tbl.Position(email))

	_, ok = tbl.Column("missing")
	assert.False(t, ok)

	assert.True(t, tbl.Has(Ref{Table: "test_table", Name: "age"}))
	assert.False(t, tbl.Has(Ref{Table: "another_table", Name: "age"}))
	assert.Equal(t, -1, tbl.Position(customColumn(0)))
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table string
		specs []ColumnSpec
		want  error
	}{
		{"empty table name", "", nil, ErrEmptyName},
		{"empty column name", "t", []ColumnSpec{Col("")}, ErrEmptyName},
		{"duplicate column", "t", []ColumnSpec{Col("a"), Col("a")}, ErrDuplicateColumn},
		{"two primary keys", "t", []ColumnSpec{PK("a"), PK("b")}, ErrMultiplePrimaryKeys},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.table, tt.specs...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew("t", Col("a"), Col("a")) })
	assert.Panics(t, func() { testTable(t).MustColumn("nope") })
}

func TestColumnsReturnsCopy(t *testing.T) {
	tbl := testTable(t)
	cols := tbl.Columns()
	cols[0].Name = "mutated"

	first := tbl.Columns()[0]
	assert.Equal(t, "id", first.Name)
}

func TestRelation(t *testing.T) {
	from := Ref{Table: "test_table", Name: "another_table_id"}
	to := Ref{Table: "another_table", Name: "id"}

	r := NewRelation(from, to)
	assert.Equal(t, "test_table.another_table_id -> another_table.id", r.String())
	assert.Equal(t, to, r.Reverse().From)
}
