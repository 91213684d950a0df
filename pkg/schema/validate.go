package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks definitions for problems that would produce broken DDL or
// descriptors. All problems are reported together in one error wrapping
// ErrInvalidSchema.
//
// Checked conditions:
//   - table and column names are non-empty identifiers
//   - no duplicate table names, no duplicate column names within a table
//   - every column has a type
//   - at most one primary key per table
//   - references point at a declared table and column
func Validate(defs []TableDefinition) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(defs) == 0 {
		addf("no tables declared")
	}

	tables := make(map[string]TableDefinition, len(defs))
	for i, t := range defs {
		switch {
		case t.Name == "":
			addf("table %d: empty name", i)
		case !identifierPattern.MatchString(t.Name):
			addf("table %q: invalid name", t.Name)
		}
		if _, dup := tables[t.Name]; dup && t.Name != "" {
			addf("table %q: declared twice", t.Name)
		}
		tables[t.Name] = t

		if len(t.Columns) == 0 {
			addf("table %q: no columns", t.Name)
		}

		seen := make(map[string]bool, len(t.Columns))
		pks := 0
		for j, c := range t.Columns {
			switch {
			case c.Name == "":
				addf("table %q: column %d: empty name", t.Name, j)
				continue
			case !identifierPattern.MatchString(c.Name):
				addf("column %s.%s: invalid name", t.Name, c.Name)
			}
			if seen[c.Name] {
				addf("column %s.%s: declared twice", t.Name, c.Name)
			}
			seen[c.Name] = true
			if strings.TrimSpace(c.Type) == "" {
				addf("column %s.%s: missing type", t.Name, c.Name)
			}
			if c.PrimaryKey {
				pks++
			}
			if c.References != "" {
				if _, _, ok := c.Reference(); !ok {
					addf("column %s.%s: reference %q is not table.column", t.Name, c.Name, c.References)
				}
			}
		}
		if pks > 1 {
			addf("table %q: %d primary keys", t.Name, pks)
		}
	}

	// References are checked once every table is known.
	for _, t := range defs {
		for _, c := range t.Columns {
			ref, col, ok := c.Reference()
			if !ok {
				continue
			}
			target, found := tables[ref]
			if !found {
				addf("column %s.%s: references unknown table %q", t.Name, c.Name, ref)
				continue
			}
			if _, found := target.Column(col); !found {
				addf("column %s.%s: references unknown column %s.%s", t.Name, c.Name, ref, col)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(problems, "; "))
	}
	return nil
}
