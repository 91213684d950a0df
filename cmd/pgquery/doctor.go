package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/internal/doctor"
)

var (
	doctorDB      string
	doctorSchema  string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long:  `Compare the database with the schema file: migration record, tables and columns.`,
	Example: `  # Run health checks
  pgquery doctor --db postgres://localhost/mydb

  # Run with verbose output
  pgquery doctor --db postgres://localhost/mydb --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(doctorSchema, cfg.Schema)
		verboseFlag := resolveBool(doctorVerbose, cfg.Doctor.Verbose)

		dsn, err := resolveDSN(doctorDB)
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), dsn)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if !quiet {
			fmt.Println("pgquery doctor - Health Check")
		}

		report, err := doctor.New(db, schemaPath).Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}

		report.Print(os.Stdout, verboseFlag)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.StringVar(&doctorSchema, "schema", "", "path to schema file")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}
