// Package gogen implements the Go client code generator.
//
// The generated file declares one table.Table var per schema table, one
// table.Ref var per visible column and one table.Relation var per foreign
// key, so that statements can be built without string literals:
//
//	q, err := pgquery.Select(tables.Users).
//		Columns(tables.UsersID, tables.UsersEmail).
//		Where(expr.Col(tables.UsersEmail).Equals(email)).
//		Build()
package gogen

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/pthm/pgquery/internal/clientgen"
	"github.com/pthm/pgquery/pkg/schema"
)

func init() {
	clientgen.Register(&Generator{})
}

// FileName is the name of the single generated file.
const FileName = "tables_gen.go"

// ErrNameCollision is returned when two schema objects map to the same Go
// identifier.
var ErrNameCollision = errors.New("gogen: generated name collision")

//go:embed templates/tables.go.tpl
var tablesTemplate string

var tmpl = template.Must(template.New("tables").Parse(tablesTemplate))

// Generator implements clientgen.Generator for Go.
type Generator struct{}

// Name returns "go" as the runtime identifier.
func (g *Generator) Name() string { return "go" }

// DefaultConfig returns default configuration for Go code generation.
func (g *Generator) DefaultConfig() *clientgen.Config {
	return &clientgen.Config{
		Package:     "tables",
		TableFilter: "",
		Options:     make(map[string]any),
	}
}

// Generate renders tables_gen.go. The definitions are validated first.
func (g *Generator) Generate(tables []schema.TableDefinition, cfg *clientgen.Config) (map[string][]byte, error) {
	if cfg == nil {
		cfg = g.DefaultConfig()
	}
	if err := schema.Validate(tables); err != nil {
		return nil, err
	}

	data, err := buildFileData(tables, cfg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return map[string][]byte{FileName: src}, nil
}

type fileData struct {
	Package   string
	Tables    []tableData
	Relations []relationData
}

type tableData struct {
	Name    string
	GoName  string
	Columns []columnData
}

type columnData struct {
	Name   string
	GoName string
	Spec   string
}

type relationData struct {
	GoName string
	From   string
	To     string
}

func buildFileData(defs []schema.TableDefinition, cfg *clientgen.Config) (fileData, error) {
	pkg := cfg.Package
	if pkg == "" {
		pkg = "tables"
	}
	data := fileData{Package: pkg}

	// names tracks every top-level identifier against the object it names.
	names := make(map[string]string)
	claim := func(ident, owner string) error {
		if prev, ok := names[ident]; ok {
			return fmt.Errorf("%w: %s is used by %s and %s", ErrNameCollision, ident, prev, owner)
		}
		names[ident] = owner
		return nil
	}

	// vars maps table.column to its generated column var.
	vars := make(map[string]string)
	for _, d := range defs {
		if !cfg.Include(d.Name) {
			continue
		}
		td := tableData{Name: d.Name, GoName: d.GoName}
		if td.GoName == "" {
			td.GoName = GoName(d.Name)
		}
		if err := claim(td.GoName, "table "+d.Name); err != nil {
			return fileData{}, err
		}
		if err := claim(td.GoName+"Columns", "table "+d.Name); err != nil {
			return fileData{}, err
		}
		for _, c := range d.VisibleColumns() {
			suffix := c.GoName
			if suffix == "" {
				suffix = GoName(c.Name)
			}
			cd := columnData{Name: c.Name, GoName: td.GoName + suffix, Spec: "Col"}
			if c.PrimaryKey {
				cd.Spec = "PK"
			}
			if err := claim(cd.GoName, "column "+d.Name+"."+c.Name); err != nil {
				return fileData{}, err
			}
			vars[d.Name+"."+c.Name] = cd.GoName
			td.Columns = append(td.Columns, cd)
		}
		data.Tables = append(data.Tables, td)
	}

	for _, rel := range schema.Relations(defs) {
		from, okFrom := vars[rel.From.FullName()]
		to, okTo := vars[rel.To.FullName()]
		if !okFrom || !okTo {
			continue
		}
		rd := relationData{GoName: from + "To" + to, From: from, To: to}
		if err := claim(rd.GoName, "relation "+rel.String()); err != nil {
			return fileData{}, err
		}
		data.Relations = append(data.Relations, rd)
	}
	return data, nil
}

// commonInitialisms are rendered fully upper-cased in Go names.
var commonInitialisms = map[string]bool{
	"API": true, "DB": true, "HTML": true, "HTTP": true, "HTTPS": true,
	"ID": true, "IP": true, "JSON": true, "SQL": true, "TLS": true,
	"UI": true, "URI": true, "URL": true, "UUID": true, "XML": true,
}

// GoName converts a snake_case SQL identifier to an exported Go identifier:
// "team_id" becomes "TeamID" and "api_keys" becomes "APIKeys".
func GoName(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	}) {
		if upper := strings.ToUpper(part); commonInitialisms[upper] {
			b.WriteString(upper)
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "X" + name
	}
	return name
}
