package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/pkg/schema"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the schema file",
	Long:  `Validate the schema file and check that its tables can be created in dependency order.`,
	Example: `  # Validate a specific schema file
  pgquery validate --schema pgquery.schema.yaml

  # Validate using config file settings
  pgquery validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(validateSchema, cfg.Schema)

		defs, err := loadSchema(schemaPath)
		if err != nil {
			return err
		}
		if _, err := schema.DDL(defs); err != nil {
			return cli.SchemaParseError("ordering tables", err)
		}

		if !quiet {
			fmt.Printf("Schema is valid. Found %d tables:\n", len(defs))
			for _, t := range defs {
				fmt.Printf("  - %s (%d columns)\n", t.Name, len(t.Columns))
			}
		}

		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "path to schema file")
}

// loadSchema reads, parses and validates a schema file.
func loadSchema(path string) ([]schema.TableDefinition, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cli.SchemaParseError(fmt.Sprintf("schema not found: %s", path), nil)
	}
	defs, err := schema.Load(path)
	if err != nil {
		return nil, cli.SchemaParseError("parsing schema", err)
	}
	if err := schema.Validate(defs); err != nil {
		return nil, cli.SchemaParseError("validating schema", err)
	}
	return defs, nil
}
