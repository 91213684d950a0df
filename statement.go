package pgquery

import (
	"github.com/pthm/pgquery/pkg/args"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// Query is a rendered statement ready to send to the database.
// Args[i] binds placeholder $i+1.
type Query struct {
	SQL  string
	Args []any
}

// Statement is implemented by every statement builder.
//
// Build lowers the statement into SQL text and its arguments. Arguments can
// be drained once, so a second Build on the same builder returns
// ErrArgumentsTaken.
type Statement interface {
	Build() (Query, error)
}

// MustBuild builds s and panics on error. Use it for statements known to be
// valid, such as package-level fixtures.
func MustBuild(s Statement) Query {
	q, err := s.Build()
	if err != nil {
		panic("pgquery.MustBuild: " + err.Error())
	}
	return q
}

// stmt holds the argument holder shared by all clauses of one statement.
type stmt struct {
	h *args.Holder
}

func newStmt() stmt {
	return stmt{h: args.New()}
}

// check returns ErrArgumentsTaken when the statement was already built.
func (s *stmt) check() error {
	if s.h.Drained() {
		return ErrArgumentsTaken
	}
	return nil
}

func (s *stmt) lower(l expr.Lowerer) expr.Expr {
	return l.Lower(s.h)
}

// finish terminates the statement text and drains the arguments.
func (s *stmt) finish(sql string) Query {
	return Query{SQL: sql + ";", Args: s.h.Drain()}
}

// where collects conditions combined with AND.
type where []expr.Lowerer

func (w where) add(conds ...any) where {
	out := make(where, 0, len(w)+len(conds))
	out = append(out, w...)
	for _, c := range conds {
		out = append(out, expr.Arg(c))
	}
	return out
}

func (w where) lower(h *args.Holder) expr.Expr {
	conds := make([]expr.Expr, len(w))
	for i, c := range w {
		conds[i] = c.Lower(h)
	}
	return expr.JoinConditions(expr.And, conds...)
}

// clause renders " text", or "" for empty text.
func clause(text string) string {
	if text == "" {
		return ""
	}
	return " " + text
}

// columnNames renders bare column names for INSERT column lists.
func columnNames(cols []table.DynColumn) string {
	return table.ConcatColumnNames(cols, ", ")
}
