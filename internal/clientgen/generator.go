// Package clientgen provides a registry of language-specific client code generators.
//
// Generators turn the table definitions of a schema file into typed table
// and column descriptors. They return a file map so that a language can
// spread its output over several files.
//
// This is an internal package used by the pgquery CLI. For programmatic code
// generation, use pkg/clientgen which provides a stable public API.
package clientgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pthm/pgquery/pkg/schema"
)

// Generator produces language-specific client code from a schema.
//
// Implementations should be registered via Register() in their init() function.
// The CLI uses the registry to dispatch generation based on the --runtime flag.
type Generator interface {
	// Name returns the runtime identifier ("go").
	// This is used as the value for --runtime in the CLI.
	Name() string

	// Generate returns a map of filename -> content for all generated files.
	// The filenames are relative paths (e.g., "tables_gen.go").
	// The caller is responsible for writing these to the appropriate location.
	Generate(tables []schema.TableDefinition, cfg *Config) (map[string][]byte, error)

	// DefaultConfig returns the default configuration for this generator.
	DefaultConfig() *Config
}

// Config holds language-agnostic generation options.
type Config struct {
	// Package is the package/module name for generated code.
	// For Go: package name (e.g., "tables")
	Package string

	// TableFilter limits which tables get descriptors generated.
	// If empty, all tables are included.
	// Example: "billing_" generates only the billing tables.
	TableFilter string

	// Options holds language-specific configuration.
	// Each generator documents its supported options.
	Options map[string]any
}

// Include reports whether a table passes the table filter.
func (c *Config) Include(tableName string) bool {
	return c == nil || strings.HasPrefix(tableName, c.TableFilter)
}

// registry maps runtime names to generators.
var registry = make(map[string]Generator)

// Register adds a generator to the global registry.
// Generators should call this from their init() function.
//
// Panics if a generator with the same name is already registered.
func Register(g Generator) {
	name := g.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("clientgen: generator %q already registered", name))
	}
	registry[name] = g
}

// Get returns the generator for the given runtime name.
// Returns nil if no generator is registered for that name.
func Get(name string) Generator {
	return registry[name]
}

// List returns all registered generator names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered returns true if a generator is registered for the given name.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}
