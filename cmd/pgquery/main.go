// Package main provides a CLI for managing pgquery schemas.
//
// The CLI supports:
//   - validate: Check the YAML schema file
//   - migrate: Create the schema tables in PostgreSQL
//   - status: Check current migration state
//   - doctor: Compare the database with the schema file
//   - generate client: Produce typed table descriptors from the schema
//   - render: Print sample statements for the schema tables
//
// Usage:
//
//	pgquery [flags] <command>
//
// Commands that require database access (migrate, status, doctor) need --db
// or a database section in pgquery.yaml.
package main

import "os"

func main() {
	os.Exit(Execute())
}
