package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/cli"
	"github.com/pthm/pgquery/internal/clientgen"
	_ "github.com/pthm/pgquery/internal/clientgen/go" // registers "go"
)

var (
	genClientRuntime string
	genClientSchema  string
	genClientOutput  string
	genClientPackage string
	genClientFilter  string
)

var generateClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Generate typed table descriptors",
	Long: `Generate typed table, column and relation descriptors from a schema file.

Supported runtimes: ` + strings.Join(clientgen.List(), ", "),
	Example: `  # Generate Go code to a directory
  pgquery generate client --runtime go --schema pgquery.schema.yaml --output internal/tables/

  # Generate with custom package name
  pgquery generate client --schema pgquery.schema.yaml --output . --package models

  # Generate only the billing tables
  pgquery generate client --schema pgquery.schema.yaml --output . --filter billing_

  # Output to stdout
  pgquery generate client --schema pgquery.schema.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve values: flags > config > defaults
		runtime := resolveString(genClientRuntime, cfg.Generate.Client.Runtime, "go")
		schemaPath := resolveString(genClientSchema, cfg.ResolvedSchema())
		output := resolveString(genClientOutput, cfg.Generate.Client.Output)
		pkg := resolveString(genClientPackage, cfg.Generate.Client.Package, "tables")
		filter := resolveString(genClientFilter, cfg.Generate.Client.Filter)

		if schemaPath == "" {
			return cli.ConfigError("--schema is required", nil)
		}

		gen := clientgen.Get(runtime)
		if gen == nil {
			return cli.ConfigError(
				fmt.Sprintf("unknown runtime %q", runtime),
				fmt.Errorf("supported runtimes: %s", strings.Join(clientgen.List(), ", ")),
			)
		}

		defs, err := loadSchema(schemaPath)
		if err != nil {
			return err
		}

		genCfg := gen.DefaultConfig()
		genCfg.Package = pkg
		genCfg.TableFilter = filter
		files, err := gen.Generate(defs, genCfg)
		if err != nil {
			return cli.GeneralError("generation failed", err)
		}

		if output == "" {
			if len(files) > 1 {
				return cli.ConfigError("--output is required for multi-file generation", nil)
			}
			for _, content := range files {
				if _, err := os.Stdout.Write(content); err != nil {
					return cli.GeneralError("writing to stdout", err)
				}
			}
			return nil
		}

		if err := os.MkdirAll(output, 0o755); err != nil {
			return cli.GeneralError("creating output directory", err)
		}
		for filename, content := range files {
			outPath := filepath.Join(output, filename)
			if err := os.WriteFile(outPath, content, 0o644); err != nil {
				return cli.GeneralError(fmt.Sprintf("writing %s", outPath), err)
			}
			if !quiet {
				fmt.Printf("Generated %s\n", outPath)
			}
		}
		return nil
	},
}

func init() {
	f := generateClientCmd.Flags()
	f.StringVar(&genClientRuntime, "runtime", "", "target runtime: "+strings.Join(clientgen.List(), ", "))
	f.StringVar(&genClientSchema, "schema", "", "path to schema file")
	f.StringVar(&genClientOutput, "output", "", "output directory (default: stdout)")
	f.StringVar(&genClientPackage, "package", "", "package name (default: tables)")
	f.StringVar(&genClientFilter, "filter", "", "table name prefix filter (e.g., billing_)")
}
