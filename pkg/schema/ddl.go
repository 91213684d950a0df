package schema

import (
	"fmt"
	"strings"
)

// DDL renders one CREATE TABLE IF NOT EXISTS statement per table, ordered so
// that every referenced table is created before the tables pointing at it.
// Tables without dependencies keep their declaration order.
//
// Definitions must pass Validate first. Self references do not affect
// ordering. Any other cycle returns an error wrapping ErrCyclicSchema.
func DDL(defs []TableDefinition) ([]string, error) {
	ordered, err := creationOrder(defs)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ordered))
	for i, t := range ordered {
		out[i] = createTable(t)
	}
	return out, nil
}

func createTable(t TableDefinition) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(t.Name)
	sb.WriteString(" (\n")
	for i, c := range t.Columns {
		sb.WriteString("    ")
		sb.WriteString(columnDDL(c))
		if i < len(t.Columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(");")
	return sb.String()
}

func columnDDL(c ColumnDefinition) string {
	parts := []string{c.Name, c.Type}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	if ref, col, ok := c.Reference(); ok {
		parts = append(parts, fmt.Sprintf("REFERENCES %s (%s)", ref, col))
	}
	return strings.Join(parts, " ")
}

// creationOrder sorts tables topologically by their references. Each pass
// emits, in declaration order, every table whose dependencies are done.
func creationOrder(defs []TableDefinition) ([]TableDefinition, error) {
	deps := make(map[string]map[string]bool, len(defs))
	for _, t := range defs {
		deps[t.Name] = make(map[string]bool)
		for _, c := range t.Columns {
			if ref, _, ok := c.Reference(); ok && ref != t.Name {
				deps[t.Name][ref] = true
			}
		}
	}

	done := make(map[string]bool, len(defs))
	out := make([]TableDefinition, 0, len(defs))
	for len(out) < len(defs) {
		progressed := false
		for _, t := range defs {
			if done[t.Name] || !ready(deps[t.Name], done) {
				continue
			}
			done[t.Name] = true
			out = append(out, t)
			progressed = true
		}
		if !progressed {
			var stuck []string
			for _, t := range defs {
				if !done[t.Name] {
					stuck = append(stuck, t.Name)
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrCyclicSchema, strings.Join(stuck, ", "))
		}
	}
	return out, nil
}

func ready(deps, done map[string]bool) bool {
	for d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}
