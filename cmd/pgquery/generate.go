package main

import "github.com/spf13/cobra"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate code from schema",
	Long:  `Generate typed table descriptors from a schema file.`,
}

func init() {
	generateCmd.AddCommand(generateClientCmd)
}
