package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/schema"
	"github.com/pthm/pgquery/pkg/table"
)

// MigrationsTable is the table recording applied migrations.
const MigrationsTable = "pgquery_migrations"

// migrationsDDL defines the pgquery_migrations table for tracking migration state.
const migrationsDDL = `CREATE TABLE IF NOT EXISTS pgquery_migrations (
    id SERIAL PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    schema_checksum VARCHAR(64) NOT NULL,
    table_names TEXT[] NOT NULL
);`

var (
	migrations          = table.MustNew(MigrationsTable, table.PK("id"), table.Col("applied_at"), table.Col("schema_checksum"), table.Col("table_names"))
	migrationID         = migrations.MustColumn("id")
	migrationAppliedAt  = migrations.MustColumn("applied_at")
	migrationChecksum   = migrations.MustColumn("schema_checksum")
	migrationTableNames = migrations.MustColumn("table_names")

	infoTables      = table.MustNew("information_schema.tables", table.Col("table_schema"), table.Col("table_name"))
	infoTableSchema = infoTables.MustColumn("table_schema")
	infoTableName   = infoTables.MustColumn("table_name")
)

// MigrateOptions controls migration behavior (public API).
type MigrateOptions struct {
	// DryRun outputs SQL to the provided writer without applying changes to the database.
	// If nil, migration proceeds normally. Use for previewing migrations or generating migration scripts.
	DryRun io.Writer

	// Force re-runs migration even if the schema is unchanged.
	Force bool
}

// MigrationRecord represents a row in the pgquery_migrations table.
type MigrationRecord struct {
	ID             int64
	AppliedAt      time.Time
	SchemaChecksum string
	TableNames     []string
}

// Migrator creates the tables declared in a schema file.
// The migrator is idempotent - safe to run on every application startup,
// since every table is created with CREATE TABLE IF NOT EXISTS.
//
// # Usage
//
// Use the convenience functions in this package for most use cases:
//
//	err := migrator.Migrate(ctx, db, "pgquery.schema.yaml")
//
// Use the Migrator directly when you have pre-parsed definitions
// or need status checks:
//
//	m := migrator.NewMigrator(db, "pgquery.schema.yaml")
//	status, err := m.GetStatus(ctx)
type Migrator struct {
	db         Execer
	schemaPath string
	logger     *slog.Logger
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the logger for applied and skipped migrations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Migrator) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMigrator creates a new schema migrator.
// The Execer is typically *sql.DB but can be *sql.Tx for testing.
func NewMigrator(db Execer, schemaPath string, opts ...Option) *Migrator {
	m := &Migrator{
		db:         db,
		schemaPath: schemaPath,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SchemaPath returns the path to the schema file.
func (m *Migrator) SchemaPath() string {
	return m.schemaPath
}

// HasSchema returns true if the schema file exists.
func (m *Migrator) HasSchema() bool {
	if m.schemaPath == "" {
		return false
	}
	_, err := os.Stat(m.schemaPath)
	return err == nil
}

// Plan is the SQL a migration applies.
type Plan struct {
	Checksum   string
	TableNames []string
	Statements []string
}

// NewPlan validates definitions and renders their DDL.
// content is the raw schema file used for the checksum.
func NewPlan(defs []schema.TableDefinition, content []byte) (*Plan, error) {
	if err := schema.Validate(defs); err != nil {
		return nil, err
	}
	stmts, err := schema.DDL(defs)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return &Plan{
		Checksum:   schema.Checksum(content),
		TableNames: names,
		Statements: stmts,
	}, nil
}

// MigrateWithDefinitions applies a schema. content is the raw schema file
// text; it is only used for change detection.
//
// The method:
//  1. Validates the definitions and renders DDL in dependency order
//  2. Skips when the last recorded checksum matches (unless Force or DryRun)
//  3. Applies everything atomically in a transaction:
//     - Migration tracking table
//     - CREATE TABLE statements
//     - Migration record
//
// Uses a transaction if the db supports it (*sql.DB). This ensures
// the schema is updated atomically or not at all.
func (m *Migrator) MigrateWithDefinitions(ctx context.Context, defs []schema.TableDefinition, content []byte, opts MigrateOptions) (skipped bool, err error) {
	plan, err := NewPlan(defs, content)
	if err != nil {
		return false, err
	}

	if opts.DryRun != nil {
		return false, m.outputDryRun(opts.DryRun, plan)
	}

	if !opts.Force {
		last, err := m.getLastMigration(ctx, m.db)
		if err != nil {
			return false, fmt.Errorf("checking last migration: %w", err)
		}
		if shouldSkipMigration(last, plan.Checksum) {
			m.logger.InfoContext(ctx, "schema unchanged, skipping migration", "checksum", plan.Checksum)
			return true, nil
		}
	}

	if txer, ok := m.db.(interface {
		BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	}); ok {
		tx, err := txer.BeginTx(ctx, nil)
		if err != nil {
			return false, fmt.Errorf("starting transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := m.apply(ctx, tx, plan); err != nil {
			return false, err
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("committing migration: %w", err)
		}
	} else if err := m.apply(ctx, m.db, plan); err != nil {
		// Fall back to non-transactional (for *sql.Conn)
		return false, err
	}

	m.logger.InfoContext(ctx, "applied migration", "checksum", plan.Checksum, "tables", len(plan.TableNames))
	return false, nil
}

func (m *Migrator) apply(ctx context.Context, db Execer, plan *Plan) error {
	if _, err := db.ExecContext(ctx, migrationsDDL); err != nil {
		return fmt.Errorf("applying migrations DDL: %w", err)
	}
	for i, stmt := range plan.Statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table %s: %w", plan.TableNames[i], pgquery.MapError("exec", err))
		}
	}
	return m.insertMigrationRecord(ctx, db, plan)
}

// insertMigrationRecord records the migration in pgquery_migrations.
func (m *Migrator) insertMigrationRecord(ctx context.Context, db Execer, plan *Plan) error {
	_, err := pgquery.NewRunner(db, pgquery.WithLogger(m.logger)).Exec(ctx, recordStatement(plan))
	if err != nil {
		return fmt.Errorf("inserting migration record: %w", err)
	}
	return nil
}

func recordStatement(plan *Plan) *pgquery.InsertBuilder {
	return pgquery.Insert(migrations).
		Set(migrationChecksum, plan.Checksum).
		Set(migrationTableNames, pq.Array(plan.TableNames))
}

// shouldSkipMigration returns true if the schema is unchanged.
func shouldSkipMigration(last *MigrationRecord, checksum string) bool {
	return last != nil && last.SchemaChecksum == checksum
}

// GetLastMigration returns the most recent migration record, or nil if none exists.
func (m *Migrator) GetLastMigration(ctx context.Context) (*MigrationRecord, error) {
	return m.getLastMigration(ctx, m.db)
}

func (m *Migrator) getLastMigration(ctx context.Context, db Execer) (*MigrationRecord, error) {
	r := pgquery.NewRunner(db, pgquery.WithLogger(m.logger))

	// First check if the migrations table exists
	exists, err := tableExists(ctx, r, MigrationsTable)
	if err != nil {
		return nil, fmt.Errorf("checking %s table: %w", MigrationsTable, err)
	}
	if !exists {
		return nil, nil // No migrations table yet
	}

	var rec MigrationRecord
	err = r.ScanRow(ctx, lastMigrationStatement(),
		&rec.ID, &rec.AppliedAt, &rec.SchemaChecksum, pq.Array(&rec.TableNames))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No previous migration
	}
	if err != nil {
		return nil, fmt.Errorf("querying last migration: %w", err)
	}
	return &rec, nil
}

func lastMigrationStatement() *pgquery.SelectBuilder {
	return pgquery.Select(migrations).
		Columns(migrationID, migrationAppliedAt, migrationChecksum, migrationTableNames).
		OrderBy(expr.Desc(migrationID)).
		Limit(1)
}

func tableExistsStatement(name string) *pgquery.ExistsBuilder {
	return pgquery.Exists(infoTables).Where(
		expr.Col(infoTableSchema).Equals(expr.Function("current_schema")),
		expr.Col(infoTableName).Equals(name),
	)
}

func tableExists(ctx context.Context, r *pgquery.Runner, name string) (bool, error) {
	return r.Exists(ctx, tableExistsStatement(name))
}

// HasMigrationsTable reports whether pgquery_migrations exists in the
// current schema.
func (m *Migrator) HasMigrationsTable(ctx context.Context) (bool, error) {
	return tableExists(ctx, pgquery.NewRunner(m.db, pgquery.WithLogger(m.logger)), MigrationsTable)
}

// TableStatus reports whether a declared table exists.
type TableStatus struct {
	Name   string
	Exists bool
}

// Status represents the current migration state.
// Use GetStatus to check if the database matches the schema file.
type Status struct {
	// SchemaExists indicates if the schema file exists on disk.
	SchemaExists bool

	// Tables lists every table declared in the schema file.
	Tables []TableStatus

	// LastMigration is the most recent migration record, or nil.
	LastMigration *MigrationRecord

	// UpToDate is true when the last migration matches the schema file checksum.
	UpToDate bool
}

// Missing returns the declared tables that do not exist.
func (s *Status) Missing() []string {
	var out []string
	for _, t := range s.Tables {
		if !t.Exists {
			out = append(out, t.Name)
		}
	}
	return out
}

// GetStatus returns the current migration status.
// Useful for health checks or migration diagnostics.
func (m *Migrator) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{
		SchemaExists: m.HasSchema(),
	}

	last, err := m.getLastMigration(ctx, m.db)
	if err != nil {
		return nil, err
	}
	status.LastMigration = last

	if !status.SchemaExists {
		return status, nil
	}

	content, err := os.ReadFile(m.schemaPath)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	defs, err := schema.Parse(content)
	if err != nil {
		return nil, err
	}
	status.UpToDate = shouldSkipMigration(last, schema.Checksum(content))

	r := pgquery.NewRunner(m.db, pgquery.WithLogger(m.logger))
	for _, d := range defs {
		exists, err := tableExists(ctx, r, d.Name)
		if err != nil {
			return nil, fmt.Errorf("checking table %s: %w", d.Name, err)
		}
		status.Tables = append(status.Tables, TableStatus{Name: d.Name, Exists: exists})
	}

	return status, nil
}

// outputDryRun writes the migration SQL to the provided writer.
func (m *Migrator) outputDryRun(w io.Writer, plan *Plan) error {
	record, err := recordStatement(plan).Build()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "-- pgquery migration (dry-run)\n")
	_, _ = fmt.Fprintf(w, "-- Schema checksum: %s\n", plan.Checksum)
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- DDL: Migration Tracking Table\n")
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	_, _ = fmt.Fprintf(w, "%s\n\n", migrationsDDL)

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- Tables (%d tables)\n", len(plan.Statements))
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	for _, stmt := range plan.Statements {
		_, _ = fmt.Fprintf(w, "%s\n\n", stmt)
	}

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- Migration Record\n")
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	_, _ = fmt.Fprintf(w, "%s\n", record.SQL)
	_, _ = fmt.Fprintf(w, "-- $1 = '%s'\n", plan.Checksum)
	_, _ = fmt.Fprintf(w, "-- $2 = '{%s}'\n", strings.Join(plan.TableNames, ","))
	return nil
}
