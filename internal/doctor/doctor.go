// Package doctor provides health checks for a pgquery schema and the
// database it describes.
//
// The doctor command validates that the database matches the schema file
// by checking the file itself, the migration record, and every declared
// table and column.
//
// Example usage:
//
//	d := doctor.New(db, "pgquery.schema.yaml")
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/migrator"
	"github.com/pthm/pgquery/pkg/schema"
	"github.com/pthm/pgquery/pkg/table"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

var (
	passFmt     = color.New(color.FgGreen).SprintFunc()
	warnFmt     = color.New(color.FgYellow).SprintFunc()
	failFmt     = color.New(color.FgRed, color.Bold).SprintFunc()
	categoryFmt = color.New(color.Bold).SprintFunc()
	hintFmt     = color.New(color.FgCyan).SprintfFunc()
)

// coloredSymbol returns Symbol wrapped in the status colour.
func (s Status) coloredSymbol() string {
	switch s {
	case StatusPass:
		return passFmt(s.Symbol())
	case StatusWarn:
		return warnFmt(s.Symbol())
	case StatusFail:
		return failFmt(s.Symbol())
	default:
		return s.Symbol()
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Schema File", "Tables").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer. Colours follow
// github.com/fatih/color, which disables them when stdout is not a terminal
// or NO_COLOR is set.
func (r *Report) Print(w io.Writer, verbose bool) {
	// Group checks by category
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", categoryFmt(cat))
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.coloredSymbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      %s\n", hintFmt("Fix: %s", check.FixHint))
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

var (
	infoColumns        = table.MustNew("information_schema.columns", table.Col("table_schema"), table.Col("table_name"), table.Col("column_name"), table.Col("is_nullable"), table.Col("ordinal_position"))
	infoColumnSchema   = infoColumns.MustColumn("table_schema")
	infoColumnTable    = infoColumns.MustColumn("table_name")
	infoColumnName     = infoColumns.MustColumn("column_name")
	infoColumnNullable = infoColumns.MustColumn("is_nullable")
	infoColumnPosition = infoColumns.MustColumn("ordinal_position")
)

// Doctor performs health checks on a schema file and its database.
type Doctor struct {
	db         pgquery.Execer
	schemaPath string

	// Cached data from checks (populated during Run)
	defs          []schema.TableDefinition
	schemaContent []byte
}

// New creates a new Doctor instance. Table checks query db concurrently,
// so db must be safe for concurrent use (a *sql.DB, not a *sql.Tx).
func New(db pgquery.Execer, schemaPath string) *Doctor {
	return &Doctor{
		db:         db,
		schemaPath: schemaPath,
	}
}

// Run executes all health checks and returns a report.
// Database checks are skipped when the schema file is unusable.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkSchemaFile(report)
	if err := d.checkMigrationState(ctx, report); err != nil {
		return nil, fmt.Errorf("checking migration state: %w", err)
	}
	if err := d.checkTables(ctx, report); err != nil {
		return nil, fmt.Errorf("checking tables: %w", err)
	}

	return report, nil
}

// checkSchemaFile validates the schema file exists and is valid.
func (d *Doctor) checkSchemaFile(report *Report) {
	const category = "Schema File"

	content, err := os.ReadFile(d.schemaPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema file not found at %s", d.schemaPath),
			Details:  err.Error(),
			FixHint:  "Create a schema file or set schema in pgquery.yaml",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema file exists at %s", d.schemaPath),
	})

	defs, err := schema.Parse(content)
	if err == nil {
		err = schema.Validate(defs)
	}
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "valid",
			Status:   StatusFail,
			Message:  "Schema is invalid",
			Details:  err.Error(),
			FixHint:  "Run 'pgquery validate' to see detailed errors",
		})
		return
	}

	columnCount := 0
	for _, t := range defs {
		columnCount += len(t.Columns)
	}
	report.AddCheck(CheckResult{
		Category: category,
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema is valid (%d tables, %d columns)", len(defs), columnCount),
	})

	if _, err := schema.DDL(defs); err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "references",
			Status:   StatusFail,
			Message:  "Foreign keys form a cycle",
			Details:  err.Error(),
			FixHint:  "Make one reference in the cycle nullable and add it in a later migration",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "references",
		Status:   StatusPass,
		Message:  "Tables can be created in dependency order",
	})

	d.defs = defs
	d.schemaContent = content
}

// checkMigrationState validates the migration tracking table and state.
func (d *Doctor) checkMigrationState(ctx context.Context, report *Report) error {
	const category = "Migration State"
	m := migrator.NewMigrator(d.db, d.schemaPath)

	tableExists, err := m.HasMigrationsTable(ctx)
	if err != nil {
		return fmt.Errorf("checking migrations table: %w", err)
	}

	if !tableExists {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "table_exists",
			Status:   StatusWarn,
			Message:  migrator.MigrationsTable + " table does not exist",
			Details:  "Migration tracking is not set up",
			FixHint:  "Run 'pgquery migrate' to create it",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "table_exists",
		Status:   StatusPass,
		Message:  migrator.MigrationsTable + " table exists",
	})

	lastMigration, err := m.GetLastMigration(ctx)
	if err != nil {
		return fmt.Errorf("getting last migration: %w", err)
	}

	if lastMigration == nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "migrated",
			Status:   StatusWarn,
			Message:  "No migration records found",
			FixHint:  "Run 'pgquery migrate' to apply the schema",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "migrated",
		Status:   StatusPass,
		Message: fmt.Sprintf("Schema migrated at %s (%d tables tracked)",
			lastMigration.AppliedAt.Format("2006-01-02 15:04:05"), len(lastMigration.TableNames)),
	})

	// Check if schema has changed since last migration
	if d.schemaContent == nil {
		return nil
	}
	currentChecksum := schema.Checksum(d.schemaContent)
	if currentChecksum != lastMigration.SchemaChecksum {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "schema_sync",
			Status:   StatusWarn,
			Message:  "Schema file has changed since last migration",
			Details:  fmt.Sprintf("File checksum: %s...\nDB checksum:   %s...", prefix(currentChecksum, 16), prefix(lastMigration.SchemaChecksum, 16)),
			FixHint:  "Run 'pgquery migrate' to apply changes",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "schema_sync",
		Status:   StatusPass,
		Message:  "Schema is in sync with database",
	})
	return nil
}

// dbColumn is one row of information_schema.columns.
type dbColumn struct {
	Name     string
	Nullable bool
}

// columnsStatement lists the columns of tableName in the current schema.
func columnsStatement(tableName string) *pgquery.SelectBuilder {
	return pgquery.Select(infoColumns).
		Columns(infoColumnName, infoColumnNullable).
		Where(
			expr.Col(infoColumnSchema).Equals(expr.Function("current_schema")),
			expr.Col(infoColumnTable).Equals(tableName),
		).
		OrderBy(expr.Asc(infoColumnPosition))
}

func (d *Doctor) getColumns(ctx context.Context, tableName string) ([]dbColumn, error) {
	rows, err := pgquery.NewRunner(d.db).Query(ctx, columnsStatement(tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []dbColumn
	for rows.Next() {
		var (
			c        dbColumn
			nullable string
		)
		if err := rows.Scan(&c.Name, &nullable); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		c.Nullable = nullable == "YES"
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// tableProbes bounds the concurrent information_schema queries.
const tableProbes = 4

// checkTables compares every declared table with information_schema.
// Results are reported in schema order.
func (d *Doctor) checkTables(ctx context.Context, report *Report) error {
	const category = "Tables"
	if d.defs == nil {
		return nil
	}

	found := make([][]dbColumn, len(d.defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tableProbes)
	for i, t := range d.defs {
		g.Go(func() error {
			cols, err := d.getColumns(gctx, t.Name)
			if err != nil {
				return fmt.Errorf("getting columns of %s: %w", t.Name, err)
			}
			found[i] = cols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, t := range d.defs {
		for _, check := range compareTable(t, found[i]) {
			check.Category = category
			report.AddCheck(check)
		}
	}
	return nil
}

// compareTable compares a table definition with the columns found in the
// database. A table with no columns does not exist.
func compareTable(def schema.TableDefinition, cols []dbColumn) []CheckResult {
	if len(cols) == 0 {
		return []CheckResult{{
			Name:    def.Name,
			Status:  StatusFail,
			Message: fmt.Sprintf("Table %s does not exist", def.Name),
			FixHint: "Run 'pgquery migrate' to create it",
		}}
	}

	found := make(map[string]dbColumn, len(cols))
	for _, c := range cols {
		found[c.Name] = c
	}

	var missing, nullability []string
	for _, c := range def.Columns {
		dbc, ok := found[c.Name]
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		delete(found, c.Name)
		if wantNullable := c.Nullable && !c.PrimaryKey; dbc.Nullable != wantNullable {
			nullability = append(nullability, c.Name)
		}
	}
	var extra []string
	for _, c := range cols {
		if _, ok := found[c.Name]; ok {
			extra = append(extra, c.Name)
		}
	}

	var out []CheckResult
	if len(missing) > 0 {
		out = append(out, CheckResult{
			Name:    def.Name,
			Status:  StatusFail,
			Message: fmt.Sprintf("Table %s is missing %d columns", def.Name, len(missing)),
			Details: "Missing: " + strings.Join(missing, ", "),
			FixHint: "CREATE TABLE IF NOT EXISTS does not alter existing tables; add the columns with ALTER TABLE",
		})
	}
	if len(nullability) > 0 {
		out = append(out, CheckResult{
			Name:    def.Name,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Table %s has %d columns with different nullability", def.Name, len(nullability)),
			Details: "Columns: " + strings.Join(nullability, ", "),
			FixHint: "Update nullable in the schema file or ALTER the columns",
		})
	}
	if len(extra) > 0 {
		out = append(out, CheckResult{
			Name:    def.Name,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Table %s has %d columns not in the schema file", def.Name, len(extra)),
			Details: "Extra: " + strings.Join(extra, ", "),
			FixHint: "Declare the columns with skip: true to keep them out of generated code",
		})
	}
	if len(out) == 0 {
		out = append(out, CheckResult{
			Name:    def.Name,
			Status:  StatusPass,
			Message: fmt.Sprintf("Table %s matches the schema (%d columns)", def.Name, len(def.Columns)),
		})
	}
	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
