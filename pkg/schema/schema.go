// Package schema reads table definitions from a YAML schema file and turns
// them into table descriptors and CREATE TABLE statements.
//
// A schema file lists tables and their columns:
//
//	tables:
//	  - name: users
//	    columns:
//	      - name: id
//	        type: BIGSERIAL
//	        primary_key: true
//	      - name: email
//	        type: TEXT
//	      - name: team_id
//	        type: BIGINT
//	        nullable: true
//	        references: teams.id
//
// The file is the single source for `pgquery migrate` (DDL) and
// `pgquery generate client` (Go descriptors).
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/pthm/pgquery/pkg/table"
)

// ColumnDefinition describes one column of a table.
type ColumnDefinition struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
	Default    string `json:"default,omitempty"`
	// References is a foreign key target in "table.column" form.
	References string `json:"references,omitempty"`
	// Skip keeps the column in DDL but out of descriptors and generated code.
	Skip bool `json:"skip,omitempty"`
	// GoName overrides the identifier used by generated code.
	GoName string `json:"go_name,omitempty"`
}

// Reference splits References into table and column names.
// ok is false when the column has no reference or it is malformed.
func (c ColumnDefinition) Reference() (tableName, column string, ok bool) {
	if c.References == "" {
		return "", "", false
	}
	tableName, column, ok = strings.Cut(c.References, ".")
	if !ok || tableName == "" || column == "" {
		return "", "", false
	}
	return tableName, column, true
}

// TableDefinition describes one table.
type TableDefinition struct {
	Name    string             `json:"name"`
	GoName  string             `json:"go_name,omitempty"`
	Columns []ColumnDefinition `json:"columns"`
}

// Column returns the column named name.
func (t TableDefinition) Column(name string) (ColumnDefinition, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// VisibleColumns returns the columns not marked skip, in declaration order.
func (t TableDefinition) VisibleColumns() []ColumnDefinition {
	out := make([]ColumnDefinition, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.Skip {
			out = append(out, c)
		}
	}
	return out
}

// file is the top-level document of a schema file.
type file struct {
	Tables []TableDefinition `json:"tables"`
}

// Load reads and parses the schema file at path.
func Load(path string) ([]TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Parse(data)
}

// Parse parses schema file content. Unknown fields are rejected.
// The result is not validated; call Validate before using it.
func Parse(data []byte) ([]TableDefinition, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return f.Tables, nil
}

// Marshal renders definitions back to schema file YAML.
func Marshal(defs []TableDefinition) ([]byte, error) {
	return yaml.Marshal(file{Tables: defs})
}

// Checksum returns a SHA256 hash of the schema content.
// Used to detect schema changes for skip-if-unchanged migrations.
func Checksum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// Tables converts validated definitions into table descriptors. Skipped
// columns are left out.
func Tables(defs []TableDefinition) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(defs))
	for _, d := range defs {
		cols := d.VisibleColumns()
		specs := make([]table.ColumnSpec, len(cols))
		for i, c := range cols {
			specs[i] = table.ColumnSpec{Name: c.Name, PrimaryKey: c.PrimaryKey}
		}
		t, err := table.New(d.Name, specs...)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: %v", ErrInvalidSchema, d.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Relations returns the foreign key relations between visible columns,
// in declaration order.
func Relations(defs []TableDefinition) []table.Relation {
	var out []table.Relation
	for _, d := range defs {
		for _, c := range d.VisibleColumns() {
			ref, col, ok := c.Reference()
			if !ok {
				continue
			}
			out = append(out, table.NewRelation(
				table.Ref{Table: d.Name, Name: c.Name, PrimaryKey: c.PrimaryKey},
				table.Ref{Table: ref, Name: col},
			))
		}
	}
	return out
}
