package gogen_test

import (
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/pthm/pgquery/internal/clientgen"
	gogen "github.com/pthm/pgquery/internal/clientgen/go"
	"github.com/pthm/pgquery/pkg/schema"
)

func TestGenerator_Interface(t *testing.T) {
	gen := &gogen.Generator{}

	t.Run("name returns go", func(t *testing.T) {
		if got := gen.Name(); got != "go" {
			t.Errorf("Name() = %q, want %q", got, "go")
		}
	})

	t.Run("default config has sensible values", func(t *testing.T) {
		cfg := gen.DefaultConfig()
		if cfg.Package != "tables" {
			t.Errorf("Package = %q, want %q", cfg.Package, "tables")
		}
		if cfg.TableFilter != "" {
			t.Errorf("TableFilter = %q, want empty", cfg.TableFilter)
		}
	})
}

func testTables() []schema.TableDefinition {
	return []schema.TableDefinition{
		{
			Name: "users",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
				{Name: "email", Type: "TEXT"},
				{Name: "password_hash", Type: "TEXT", Skip: true},
				{Name: "team_id", Type: "BIGINT", Nullable: true, References: "teams.id"},
			},
		},
		{
			Name:   "teams",
			GoName: "Squad",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
				{Name: "api_url", Type: "TEXT", GoName: "Endpoint"},
			},
		},
		{
			Name: "billing_invoices",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
				{Name: "user_id", Type: "BIGINT", References: "users.id"},
			},
		},
	}
}

func generate(t *testing.T, tables []schema.TableDefinition, cfg *clientgen.Config) string {
	t.Helper()
	files, err := (&gogen.Generator{}).Generate(tables, cfg)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Generate returned %d files, want 1", len(files))
	}
	code, ok := files[gogen.FileName]
	if !ok {
		t.Fatalf("Generate should return %s", gogen.FileName)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), gogen.FileName, code, 0); err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	return string(code)
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		code := generate(t, testTables(), nil)

		for _, want := range []string{
			"// Code generated by pgquery generate client. DO NOT EDIT.",
			"package tables",
			`import "github.com/pthm/pgquery/pkg/table"`,
			`var Users = table.MustNew("users",`,
			`table.PK("id"),`,
			`table.Col("email"),`,
			`Users.MustColumn("team_id")`,
			"func UsersColumns() []table.Ref { return Users.Columns() }",
			`var Squad = table.MustNew("teams",`,
			"SquadEndpoint",
			"table.NewRelation(UsersTeamID, SquadID)",
			"table.NewRelation(BillingInvoicesUserID, UsersID)",
		} {
			if !strings.Contains(code, want) {
				t.Errorf("generated code should contain %q\n%s", want, code)
			}
		}
	})

	t.Run("skipped columns are omitted", func(t *testing.T) {
		code := generate(t, testTables(), nil)
		if strings.Contains(code, "password_hash") {
			t.Error("skipped column should not be generated")
		}
	})

	t.Run("custom package", func(t *testing.T) {
		code := generate(t, testTables(), &clientgen.Config{Package: "db"})
		if !strings.Contains(code, "package db") {
			t.Error("should use configured package name")
		}
	})

	t.Run("empty package defaults to tables", func(t *testing.T) {
		code := generate(t, testTables(), &clientgen.Config{})
		if !strings.Contains(code, "package tables") {
			t.Error("empty package should default to tables")
		}
	})

	t.Run("table filter limits tables and relations", func(t *testing.T) {
		code := generate(t, testTables(), &clientgen.Config{Package: "tables", TableFilter: "billing_"})
		if !strings.Contains(code, "var BillingInvoices = ") {
			t.Error("should generate BillingInvoices with billing_ filter")
		}
		if strings.Contains(code, "var Users = ") {
			t.Error("should NOT generate Users with billing_ filter")
		}
		if strings.Contains(code, "NewRelation") {
			t.Error("relations to filtered tables should be omitted")
		}
	})

	t.Run("invalid schema is rejected", func(t *testing.T) {
		_, err := (&gogen.Generator{}).Generate([]schema.TableDefinition{{Name: "empty"}}, nil)
		if !schema.IsInvalidSchemaErr(err) {
			t.Errorf("Generate error = %v, want invalid schema", err)
		}
	})

	t.Run("name collisions are rejected", func(t *testing.T) {
		tables := []schema.TableDefinition{
			{Name: "user", Columns: []schema.ColumnDefinition{{Name: "columns", Type: "TEXT"}}},
		}
		_, err := (&gogen.Generator{}).Generate(tables, nil)
		if !errors.Is(err, gogen.ErrNameCollision) {
			t.Errorf("Generate error = %v, want name collision", err)
		}
	})
}

func TestGoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users", "Users"},
		{"team_id", "TeamID"},
		{"api_keys", "APIKeys"},
		{"created_at", "CreatedAt"},
		{"profile_url", "ProfileURL"},
		{"_private", "Private"},
		{"2fa_codes", "X2faCodes"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := gogen.GoName(tt.in); got != tt.want {
				t.Errorf("GoName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistry_GoGeneratorRegistered(t *testing.T) {
	gen := clientgen.Get("go")
	if gen == nil {
		t.Fatal("Go generator should be registered")
	}

	if gen.Name() != "go" {
		t.Errorf("Name() = %q, want %q", gen.Name(), "go")
	}
}
