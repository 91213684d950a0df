package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/pkg/schema"
)

var renderSchema string

var renderCmd = &cobra.Command{
	Use:   "render [table...]",
	Short: "Print sample statements for schema tables",
	Long:  `Print the SELECT, COUNT, INSERT, UPDATE and DELETE statements pgquery renders for each schema table.`,
	Example: `  # Render statements for every table
  pgquery render

  # Render statements for one table
  pgquery render users`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(renderSchema, cfg.Schema)

		defs, err := loadSchema(schemaPath)
		if err != nil {
			return err
		}
		tables, err := schema.Tables(defs)
		if err != nil {
			return cli.SchemaParseError("building tables", err)
		}

		want := make(map[string]bool, len(args))
		for _, name := range args {
			want[name] = true
		}

		rendered := 0
		for _, t := range tables {
			if len(want) > 0 && !want[t.Name()] {
				continue
			}
			samples, err := cli.SampleStatements(t)
			if err != nil {
				return cli.GeneralError("rendering statements", err)
			}
			if rendered > 0 {
				fmt.Println()
			}
			cli.PrintSamples(os.Stdout, t, samples)
			rendered++
		}
		if rendered < len(want) {
			return cli.GeneralError(fmt.Sprintf("%d of %d tables not found in %s", len(want)-rendered, len(want), schemaPath), nil)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderSchema, "schema", "", "path to schema file")
}
