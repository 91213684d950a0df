// Package clientgen generates typed table descriptors from a pgquery schema.
package clientgen

import (
	"fmt"
	"io"

	"github.com/pthm/pgquery/internal/clientgen"
	gogen "github.com/pthm/pgquery/internal/clientgen/go"
	"github.com/pthm/pgquery/pkg/schema"
)

// GenerateConfig is an alias for the generator configuration.
// This allows build tooling to configure code generation without importing
// internal packages.
type GenerateConfig = clientgen.Config

// TableDefinition is an alias for schema.TableDefinition.
type TableDefinition = schema.TableDefinition

// DefaultGenerateConfig returns sensible defaults for code generation.
// Package: "tables", no table filter (all tables).
func DefaultGenerateConfig() *GenerateConfig {
	return (&gogen.Generator{}).DefaultConfig()
}

// GenerateGo writes Go table descriptors for a parsed schema.
//
// Code generation enables compile-time checking of queries by generating
// table and column vars. Instead of error-prone string literals, use the
// generated descriptors:
//
//	// Before: fragile, typos caught at runtime
//	db.QueryContext(ctx, "SELECT emial FROM users WHERE id = $1", id)
//
//	// After: typos caught at compile time
//	pgquery.Select(tables.Users).
//		Columns(tables.UsersEmail).
//		Where(expr.Col(tables.UsersID).Equals(id))
//
// Generated code includes:
//   - Table vars (Users, Teams, etc.)
//   - Column vars (UsersID, UsersEmail, etc.)
//   - Column list helpers (UsersColumns(), etc.)
//   - Relation vars for foreign keys (UsersTeamIDToTeamsID, etc.)
//
// Typical workflow (run via go:generate or build script):
//
//	defs, _ := schema.Load("pgquery.schema.yaml")
//	f, _ := os.Create("internal/tables/tables_gen.go")
//	defer f.Close()
//
//	clientgen.GenerateGo(f, defs, &clientgen.GenerateConfig{
//	    Package: "tables",
//	})
//
// The generated file should be committed to version control.
func GenerateGo(w io.Writer, tables []TableDefinition, cfg *GenerateConfig) error {
	files, err := (&gogen.Generator{}).Generate(tables, cfg)
	if err != nil {
		return err
	}
	if _, err := w.Write(files[gogen.FileName]); err != nil {
		return fmt.Errorf("writing %s: %w", gogen.FileName, err)
	}
	return nil
}
