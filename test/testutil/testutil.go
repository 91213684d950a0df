// Package testutil provides shared test utilities for pgquery integration tests.
package testutil

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pthm/pgquery/pkg/migrator"
	"github.com/pthm/pgquery/pkg/schema"
	"github.com/pthm/pgquery/pkg/table"
)

// Embedded test fixtures
var (
	//go:embed testdata/schema.yaml
	schemaYAML string
)

// Singleton container state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error

	templateOnce sync.Once
	templateName string
	templateErr  error

	tablesOnce sync.Once
	tables     map[string]*table.Table
	tablesErr  error
)

// ensureSingleton returns the admin DSN. DATABASE_URL (or the DATABASE_*
// variables) takes precedence; otherwise a PostgreSQL container is started
// once per test binary.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		if cfg := GetDatabaseConfig(); cfg.URL != "" {
			singletonDSN = cfg.URL
			return
		}

		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_INITDB_ARGS": "--auth-host=trust",
			}),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}

		singletonDSN = dsn
		// Container is not stored - ryuk will handle cleanup automatically
	})

	return singletonDSN, singletonErr
}

// ensureTemplate creates the template database with the test schema
// migrated. Safe for concurrent access via sync.Once.
func ensureTemplate(adminDSN string) (string, error) {
	templateOnce.Do(func() {
		templateName = "pgquery_template"

		if err := createDatabase(adminDSN, templateName); err != nil {
			templateErr = fmt.Errorf("failed to create template database: %w", err)
			return
		}

		templateDSN, err := replaceDBName(adminDSN, templateName)
		if err != nil {
			templateErr = err
			return
		}

		if err := applyMigrations(templateDSN); err != nil {
			templateErr = fmt.Errorf("failed to apply migrations: %w", err)
			return
		}

		// Non-fatal if this fails: copying still works without template flag
		_ = markAsTemplate(adminDSN, templateName)
	})

	return templateName, templateErr
}

// DB returns a migrated database connection for testing.
// Each call creates a new isolated database copied from the template.
// The database is automatically cleaned up when the test completes.
func DB(tb testing.TB) *sql.DB {
	tb.Helper()

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL")

	tmpl, err := ensureTemplate(adminDSN)
	require.NoError(tb, err, "failed to create template database")

	dbName := uniqueDBName("test")
	err = createDatabaseFromTemplate(adminDSN, dbName, tmpl)
	require.NoError(tb, err, "failed to create test database from template")

	return open(tb, adminDSN, dbName)
}

// EmptyDB returns an empty database connection for testing.
// The database is automatically cleaned up when the test completes.
func EmptyDB(tb testing.TB) *sql.DB {
	tb.Helper()

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL")

	dbName := uniqueDBName("empty")
	err = createDatabase(adminDSN, dbName)
	require.NoError(tb, err, "failed to create empty database")

	return open(tb, adminDSN, dbName)
}

// DSN returns the connection string of a fresh migrated database, for
// tests that open their own connections (for example through lib/pq).
func DSN(tb testing.TB) string {
	tb.Helper()

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL")

	tmpl, err := ensureTemplate(adminDSN)
	require.NoError(tb, err, "failed to create template database")

	dbName := uniqueDBName("dsn")
	require.NoError(tb, createDatabaseFromTemplate(adminDSN, dbName, tmpl))
	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = dropDatabase(ctx, adminDSN, dbName)
	})

	dsn, err := replaceDBName(adminDSN, dbName)
	require.NoError(tb, err)
	return dsn
}

func open(tb testing.TB, adminDSN, dbName string) *sql.DB {
	tb.Helper()

	dsn, err := replaceDBName(adminDSN, dbName)
	require.NoError(tb, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err, "failed to connect to test database")
	GetDatabaseConfig().apply(db)
	require.NoError(tb, db.Ping(), "failed to ping test database")

	registerCleanup(tb, db, adminDSN, dbName)
	return db
}

// registerCleanup registers cleanup for the database connection and database itself.
// Cleanup runs in a goroutine to not block the test.
func registerCleanup(tb testing.TB, db *sql.DB, adminDSN, dbName string) {
	tb.Cleanup(func() {
		_ = db.Close()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = dropDatabase(ctx, adminDSN, dbName)
		}()
	})
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// adminExec runs stmts in order on a short-lived admin connection. Each
// statement is preceded by disconnecting other sessions from terminate,
// when set, so the database can be copied or dropped.
func adminExec(ctx context.Context, adminDSN, terminate string, stmts ...string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range stmts {
		if terminate != "" {
			_, _ = db.ExecContext(ctx, terminateSQL, terminate)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// terminateSQL disconnects every other session from a database.
const terminateSQL = `
	SELECT pg_terminate_backend(pid)
	FROM pg_stat_activity
	WHERE datname = $1 AND pid <> pg_backend_pid()`

func createDatabase(adminDSN, name string) error {
	return adminExec(context.Background(), adminDSN, "", "CREATE DATABASE "+name)
}

func createDatabaseFromTemplate(adminDSN, name, template string) error {
	return adminExec(context.Background(), adminDSN, template,
		fmt.Sprintf("CREATE DATABASE %s WITH TEMPLATE %s", name, template))
}

// markAsTemplate sets is_template on name.
func markAsTemplate(adminDSN, name string) error {
	return adminExec(context.Background(), adminDSN, name,
		fmt.Sprintf("ALTER DATABASE %s WITH is_template = true", name))
}

func dropDatabase(ctx context.Context, adminDSN, name string) error {
	return adminExec(ctx, adminDSN, name, "DROP DATABASE IF EXISTS "+name)
}

// applyMigrations migrates the embedded test schema.
func applyMigrations(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrator.MigrateFromString(ctx, db, schemaYAML); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// replaceDBName replaces the database name in a postgres:// DSN.
func replaceDBName(dsn, newDB string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing DSN: %w", err)
	}
	u.Path = "/" + newDB
	return u.String(), nil
}

// Schema returns the embedded schema file used for tests.
func Schema() string {
	return schemaYAML
}

// Table returns the descriptor of a test schema table.
func Table(tb testing.TB, name string) *table.Table {
	tb.Helper()

	tablesOnce.Do(func() {
		defs, err := schema.Parse([]byte(schemaYAML))
		if err != nil {
			tablesErr = err
			return
		}
		ts, err := schema.Tables(defs)
		if err != nil {
			tablesErr = err
			return
		}
		tables = make(map[string]*table.Table, len(ts))
		for _, t := range ts {
			tables[t.Name()] = t
		}
	})
	require.NoError(tb, tablesErr, "failed to load test schema")

	t, ok := tables[name]
	require.True(tb, ok, "unknown test table %s", name)
	return t
}
