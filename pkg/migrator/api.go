package migrator

import (
	"context"
	"fmt"
	"os"

	"github.com/pthm/pgquery/pkg/schema"
)

// Migrate reads a schema file and creates its tables in one operation.
// This is the recommended high-level API for most applications.
//
// The function is idempotent - safe to call on every application startup. It validates
// the schema, renders CREATE TABLE statements in dependency order, and applies everything
// atomically within a transaction (when db supports BeginTx). A schema whose checksum
// matches the last recorded migration is skipped.
//
// Example usage on application startup:
//
//	if err := migrator.Migrate(ctx, db, "pgquery.schema.yaml"); err != nil {
//	    log.Fatalf("migration failed: %v", err)
//	}
//
// For embedded schemas (no file I/O), use MigrateFromString.
// For dry-run or forced migration, use MigrateWithOptions.
func Migrate(ctx context.Context, db Execer, schemaPath string) error {
	_, err := MigrateWithOptions(ctx, db, schemaPath, MigrateOptions{})
	return err
}

// MigrateFromString parses schema content and applies it to the database.
// Useful for testing or when the schema is embedded in the application binary.
//
//	//go:embed pgquery.schema.yaml
//	var embeddedSchema string
//
//	err := migrator.MigrateFromString(ctx, db, embeddedSchema)
func MigrateFromString(ctx context.Context, db Execer, content string) error {
	defs, err := schema.Parse([]byte(content))
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}

	m := NewMigrator(db, "")
	_, err = m.MigrateWithDefinitions(ctx, defs, []byte(content), MigrateOptions{})
	return err
}

// MigrateWithOptions performs migration with control over dry-run and skip behavior.
//
// Returns (skipped, error):
//   - skipped=true if migration was skipped due to unchanged schema (only when Force=false and DryRun=nil)
//   - error is non-nil if migration failed (parse error, validation error, DB error)
//
// Example: Generate migration script without applying
//
//	var buf bytes.Buffer
//	_, err := migrator.MigrateWithOptions(ctx, db, "pgquery.schema.yaml", migrator.MigrateOptions{
//	    DryRun: &buf,
//	})
//	os.WriteFile("migrations/001_tables.sql", buf.Bytes(), 0644)
func MigrateWithOptions(ctx context.Context, db Execer, schemaPath string, opts MigrateOptions, mopts ...Option) (skipped bool, err error) {
	m := NewMigrator(db, schemaPath, mopts...)

	if !m.HasSchema() {
		return false, fmt.Errorf("no schema found at %s", m.SchemaPath())
	}

	// Read schema content for checksum
	content, err := os.ReadFile(m.SchemaPath())
	if err != nil {
		return false, fmt.Errorf("reading schema file: %w", err)
	}

	defs, err := schema.Parse(content)
	if err != nil {
		return false, fmt.Errorf("parsing schema: %w", err)
	}

	return m.MigrateWithDefinitions(ctx, defs, content, opts)
}
