package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/pkg/migrator"
	"github.com/pthm/pgquery/pkg/schema"
)

var (
	migrateDB     string
	migrateSchema string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema to database",
	Long:  `Create the schema tables in PostgreSQL and record the migration.`,
	Example: `  # Apply schema to database
  pgquery migrate --db postgres://localhost/mydb

  # Preview migration without applying
  pgquery migrate --dry-run

  # Force re-apply even if schema unchanged
  pgquery migrate --db postgres://localhost/mydb --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(migrateSchema, cfg.Schema)
		dryRun := resolveBool(migrateDryRun, cfg.Migrate.DryRun)
		force := resolveBool(migrateForce, cfg.Migrate.Force)

		if dryRun {
			return runMigrate(cmd.Context(), nil, schemaPath, migrator.MigrateOptions{DryRun: os.Stdout})
		}

		dsn, err := resolveDSN(migrateDB)
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), dsn)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return runMigrate(cmd.Context(), db, schemaPath, migrator.MigrateOptions{Force: force})
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateDB, "db", "", "database URL")
	f.StringVar(&migrateSchema, "schema", "", "path to schema file")
	f.BoolVar(&migrateDryRun, "dry-run", false, "output migration SQL without applying")
	f.BoolVar(&migrateForce, "force", false, "force migration even if schema unchanged")
}

func runMigrate(ctx context.Context, db migrator.Execer, schemaPath string, opts migrator.MigrateOptions) error {
	if opts.DryRun != nil && !quiet {
		fmt.Fprintln(os.Stderr, "-- Dry-run mode: SQL will be output but not applied")
		fmt.Fprintln(os.Stderr)
	}

	skipped, err := migrator.MigrateWithOptions(ctx, db, schemaPath, opts, migrator.WithLogger(logger))
	if err != nil {
		if schema.IsInvalidSchemaErr(err) || schema.IsCyclicSchemaErr(err) {
			return cli.SchemaParseError("schema error", err)
		}
		return cli.GeneralError("migration failed", err)
	}

	if opts.DryRun != nil || quiet {
		return nil
	}

	if skipped {
		fmt.Println("Schema unchanged, migration skipped.")
		fmt.Println("Use --force to re-apply.")
	} else {
		fmt.Println("Schema applied successfully.")
	}
	return nil
}
