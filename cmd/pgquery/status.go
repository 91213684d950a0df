package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/pkg/migrator"
)

var (
	statusDB     string
	statusSchema string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current schema status",
	Long:  `Show whether the schema file exists, which of its tables exist, and the last migration.`,
	Example: `  # Check status
  pgquery status --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(statusSchema, cfg.Schema)

		dsn, err := resolveDSN(statusDB)
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), dsn)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		m := migrator.NewMigrator(db, schemaPath, migrator.WithLogger(logger))
		s, err := m.GetStatus(cmd.Context())
		if err != nil {
			return cli.GeneralError("getting status", err)
		}

		printStatus(schemaPath, s)
		return nil
	},
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusDB, "db", "", "database URL")
	f.StringVar(&statusSchema, "schema", "", "path to schema file")
}

func printStatus(schemaPath string, s *migrator.Status) {
	if !s.SchemaExists {
		fmt.Println("Schema file:  missing")
		fmt.Printf("\nNo schema found at %s\n", schemaPath)
		return
	}
	fmt.Println("Schema file:  present")

	for _, t := range s.Tables {
		state := "missing"
		if t.Exists {
			state = "present"
		}
		fmt.Printf("Table %-20s %s\n", t.Name+":", state)
	}

	if s.LastMigration == nil {
		fmt.Println("\nNo migration recorded. Run 'pgquery migrate' to apply the schema.")
		return
	}
	fmt.Printf("\nLast migration: %s\n", s.LastMigration.AppliedAt.Format("2006-01-02 15:04:05"))
	if !s.UpToDate {
		fmt.Println("Schema file has changed since the last migration.")
	}
	if missing := s.Missing(); len(missing) > 0 {
		fmt.Printf("%d tables are missing. Run 'pgquery migrate' to create them.\n", len(missing))
	}
}
