package cli

import (
	"fmt"
	"io"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// Sample is a named statement rendered for a table.
type Sample struct {
	Name  string
	Query pgquery.Query
}

type namedStatement struct {
	name string
	stmt pgquery.Statement
}

// SampleStatements renders the typical statements of a table. Values are
// bound as NULL placeholders. Statements keyed by the primary key are left
// out when the table has none.
func SampleStatements(t *table.Table) ([]Sample, error) {
	cols := columns(t)
	statements := []namedStatement{
		{"select", pgquery.Select(t).Columns(cols...)},
		{"count", pgquery.Count(t)},
	}
	if len(cols) > 0 {
		ins := pgquery.Insert(t)
		for _, c := range cols {
			ins.Set(c, nil)
		}
		statements = append(statements, namedStatement{"insert", ins})
	}
	if pk, ok := t.PrimaryKey(); ok {
		byPK := expr.Col(pk).Equals(nil)
		statements = append(statements,
			namedStatement{"select by primary key", pgquery.Select(t).Columns(cols...).Where(byPK)})

		upd := pgquery.Update(t).Where(byPK)
		sets := 0
		for _, c := range t.Columns() {
			if !c.PrimaryKey {
				upd.Set(c, nil)
				sets++
			}
		}
		if sets > 0 {
			statements = append(statements, namedStatement{"update by primary key", upd})
		}
		statements = append(statements,
			namedStatement{"delete by primary key", pgquery.Delete(t).Where(byPK)})
	}

	out := make([]Sample, 0, len(statements))
	for _, s := range statements {
		q, err := s.stmt.Build()
		if err != nil {
			return nil, fmt.Errorf("rendering %s of %s: %w", s.name, t.Name(), err)
		}
		out = append(out, Sample{Name: s.name, Query: q})
	}
	return out, nil
}

// PrintSamples writes samples as commented SQL.
func PrintSamples(w io.Writer, t *table.Table, samples []Sample) {
	_, _ = fmt.Fprintf(w, "-- %s\n", t.Name())
	for _, s := range samples {
		_, _ = fmt.Fprintf(w, "\n-- %s (%d args)\n%s\n", s.Name, len(s.Query.Args), s.Query.SQL)
	}
}

func columns(t *table.Table) []table.Column {
	refs := t.Columns()
	cols := make([]table.Column, len(refs))
	for i, r := range refs {
		cols[i] = r
	}
	return cols
}
