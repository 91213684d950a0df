package expr

import (
	"strings"

	"github.com/pthm/pgquery/pkg/args"
	"github.com/pthm/pgquery/pkg/table"
)

// Excluded is the pseudo-table holding the row proposed for insertion.
const Excluded = "EXCLUDED"

// ConflictTarget is what an ON CONFLICT clause matches: a column list or a
// named constraint.
type ConflictTarget struct {
	Columns    []table.DynColumn
	Constraint string
}

// IsZero reports whether no target was declared.
func (t ConflictTarget) IsZero() bool {
	return len(t.Columns) == 0 && t.Constraint == ""
}

// SQL renders "(c1, c2)" or "ON CONSTRAINT name".
func (t ConflictTarget) SQL() string {
	if t.Constraint != "" {
		return "ON CONSTRAINT " + t.Constraint
	}
	return "(" + table.ConcatColumnNames(t.Columns, ", ") + ")"
}

// Assignment is a lowered SET entry: column = value.
type Assignment struct {
	Column table.DynColumn
	Value  Expr
}

// SQL renders "column = value" using the bare column name.
func (a Assignment) SQL() string {
	return a.Column.ColumnName() + " = " + a.Value.SQL()
}

// AssignmentsSQL joins assignments with ", ".
func AssignmentsSQL(as []Assignment) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = a.SQL()
	}
	return strings.Join(parts, ", ")
}

// OnConflict is a lowered conflict clause. With no assignments the action is
// DO NOTHING.
type OnConflict struct {
	Target ConflictTarget
	Set    []Assignment
}

// SQL renders "ON CONFLICT target DO NOTHING" or
// "ON CONFLICT target DO UPDATE SET ...".
func (c OnConflict) SQL() string {
	if len(c.Set) == 0 {
		return "ON CONFLICT " + c.Target.SQL() + " DO NOTHING"
	}
	return "ON CONFLICT " + c.Target.SQL() + " DO UPDATE SET " + AssignmentsSQL(c.Set)
}

type setEntry struct {
	column   table.DynColumn
	value    Lowerer
	excluded bool
}

// Conflict builds an ON CONFLICT clause. It is immutable: every method
// returns a modified copy. Assignments are lowered in the order they were
// added.
type Conflict struct {
	target ConflictTarget
	sets   []setEntry
}

// OnConflictColumns targets a column list.
func OnConflictColumns(cols ...table.Column) Conflict {
	return Conflict{target: ConflictTarget{Columns: table.DynAll(cols...)}}
}

// OnConflictConstraint targets a named constraint.
func OnConflictConstraint(name string) Conflict {
	return Conflict{target: ConflictTarget{Constraint: name}}
}

// Target returns the declared conflict target.
func (c Conflict) Target() ConflictTarget { return c.target }

// DoNothing drops any assignments so the clause renders DO NOTHING.
func (c Conflict) DoNothing() Conflict {
	c.sets = nil
	return c
}

// SetExcluded appends col = EXCLUDED.col for each column.
func (c Conflict) SetExcluded(cols ...table.Column) Conflict {
	entries := make([]setEntry, len(cols))
	for i, col := range cols {
		entries[i] = setEntry{column: table.Dyn(col), excluded: true}
	}
	c.sets = appendClone(c.sets, entries...)
	return c
}

// Set appends col = v.
func (c Conflict) Set(col table.Column, v any) Conflict {
	c.sets = appendClone(c.sets, setEntry{column: table.Dyn(col), value: Arg(v)})
	return c
}

// UpdateToExcluded targets cols and sets each of them to its excluded value.
func UpdateToExcluded(target []table.Column, cols ...table.Column) Conflict {
	return OnConflictColumns(target...).SetExcluded(cols...)
}

// Lower lowers assignment values in order.
func (c Conflict) Lower(h *args.Holder) OnConflict {
	out := OnConflict{Target: c.target}
	if len(c.sets) == 0 {
		return out
	}
	out.Set = make([]Assignment, len(c.sets))
	for i, s := range c.sets {
		var v Expr
		if s.excluded {
			v = ColumnRef{Column: s.column, Prefix: Excluded}
		} else {
			v = s.value.Lower(h)
		}
		out.Set[i] = Assignment{Column: s.column, Value: v}
	}
	return out
}

// ============================================================================
// RETURNING
// ============================================================================

// Returning is a RETURNING clause. The zero value renders nothing.
type Returning struct {
	All     bool
	Columns []table.DynColumn
}

// ReturningAll renders RETURNING *.
func ReturningAll() Returning { return Returning{All: true} }

// ReturningColumns renders RETURNING c1, c2 with bare column names.
func ReturningColumns(cols ...table.Column) Returning {
	return Returning{Columns: table.DynAll(cols...)}
}

// IsZero reports whether the clause is empty.
func (r Returning) IsZero() bool { return !r.All && len(r.Columns) == 0 }

// SQL renders the clause without a leading space.
func (r Returning) SQL() string {
	switch {
	case r.All:
		return "RETURNING *"
	case len(r.Columns) > 0:
		return "RETURNING " + table.ConcatColumnNames(r.Columns, ", ")
	default:
		return ""
	}
}
