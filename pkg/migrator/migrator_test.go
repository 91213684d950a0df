package migrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/schema"
)

const testSchema = `
tables:
  - name: posts
    columns:
      - name: id
        type: BIGSERIAL
        primary_key: true
      - name: author_id
        type: BIGINT
        references: authors.id
  - name: authors
    columns:
      - name: id
        type: BIGSERIAL
        primary_key: true
      - name: name
        type: TEXT
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgquery.schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewPlan(t *testing.T) {
	defs, err := schema.Parse([]byte(testSchema))
	require.NoError(t, err)

	plan, err := NewPlan(defs, []byte(testSchema))
	require.NoError(t, err)

	assert.Equal(t, schema.Checksum([]byte(testSchema)), plan.Checksum)
	assert.Equal(t, []string{"posts", "authors"}, plan.TableNames)
	require.Len(t, plan.Statements, 2)
	assert.Contains(t, plan.Statements[0], "CREATE TABLE IF NOT EXISTS authors")
	assert.Contains(t, plan.Statements[1], "CREATE TABLE IF NOT EXISTS posts")
}

func TestNewPlan_InvalidSchema(t *testing.T) {
	defs, err := schema.Parse([]byte("tables:\n  - name: posts\n    columns:\n      - name: id\n"))
	require.NoError(t, err)

	_, err = NewPlan(defs, nil)
	require.Error(t, err)
	assert.True(t, schema.IsInvalidSchemaErr(err))
}

func TestMigrateWithOptions_DryRun(t *testing.T) {
	path := writeSchema(t, testSchema)

	var buf bytes.Buffer
	skipped, err := MigrateWithOptions(context.Background(), nil, path, MigrateOptions{DryRun: &buf})
	require.NoError(t, err)
	assert.False(t, skipped)

	out := buf.String()
	assert.Contains(t, out, "-- pgquery migration (dry-run)")
	assert.Contains(t, out, "-- Schema checksum: "+schema.Checksum([]byte(testSchema)))
	assert.Contains(t, out, migrationsDDL)
	assert.Contains(t, out, "-- Tables (2 tables)")
	assert.Contains(t, out, "INSERT INTO pgquery_migrations (schema_checksum, table_names) VALUES ($1, $2);")
	assert.Contains(t, out, "-- $2 = '{posts,authors}'")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("TABLE IF NOT EXISTS authors")),
		bytes.Index(buf.Bytes(), []byte("TABLE IF NOT EXISTS posts")))
}

func TestMigrateWithOptions_MissingSchema(t *testing.T) {
	_, err := MigrateWithOptions(context.Background(), nil, filepath.Join(t.TempDir(), "nope.yaml"), MigrateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema found")
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name    string
		stmt    pgquery.Statement
		wantSQL string
	}{
		{
			name:    "last migration",
			stmt:    lastMigrationStatement(),
			wantSQL: "SELECT pgquery_migrations.id, pgquery_migrations.applied_at, pgquery_migrations.schema_checksum, pgquery_migrations.table_names FROM pgquery_migrations ORDER BY pgquery_migrations.id DESC LIMIT 1;",
		},
		{
			name:    "table exists",
			stmt:    tableExistsStatement("posts"),
			wantSQL: "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE information_schema.tables.table_schema = current_schema() AND information_schema.tables.table_name = $1);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.stmt.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, q.SQL)
		})
	}
}

func TestShouldSkipMigration(t *testing.T) {
	assert.False(t, shouldSkipMigration(nil, "abc"))
	assert.False(t, shouldSkipMigration(&MigrationRecord{SchemaChecksum: "def"}, "abc"))
	assert.True(t, shouldSkipMigration(&MigrationRecord{SchemaChecksum: "abc"}, "abc"))
}

func TestStatus_Missing(t *testing.T) {
	s := &Status{Tables: []TableStatus{{Name: "a", Exists: true}, {Name: "b"}, {Name: "c"}}}
	assert.Equal(t, []string{"b", "c"}, s.Missing())
}
