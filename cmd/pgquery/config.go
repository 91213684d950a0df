package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	configShowSource bool
	configShowJSON   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long: `Show the configuration pgquery runs with: defaults, then pgquery.yaml,
then PGQUERY_* environment variables. Database passwords are redacted.`,
	Example: `  pgquery config show
  pgquery config show --source
  pgquery config show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if configShowSource {
			source := configPath
			if source == "" {
				source = "(none, using defaults)"
			}
			fmt.Fprintf(w, "# config file: %s\n", source)
		}

		var (
			out []byte
			err error
		)
		if configShowJSON {
			out, err = json.MarshalIndent(cfg.Redacted(), "", "  ")
			out = append(out, '\n')
		} else {
			out, err = yaml.Marshal(cfg.Redacted())
		}
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		_, err = w.Write(out)
		return err
	},
}

func init() {
	f := configShowCmd.Flags()
	f.BoolVar(&configShowSource, "source", false, "print the config file path first")
	f.BoolVar(&configShowJSON, "json", false, "print JSON instead of YAML")
	configCmd.AddCommand(configShowCmd)
}
