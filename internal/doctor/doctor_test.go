package doctor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/pgquery/pkg/schema"
)

func init() {
	color.NoColor = true
}

const validSchema = `
tables:
  - name: users
    columns:
      - name: id
        type: BIGSERIAL
        primary_key: true
      - name: email
        type: TEXT
      - name: nickname
        type: TEXT
        nullable: true
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgquery.schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status Status
		str    string
		symbol string
	}{
		{StatusPass, "pass", "✓"},
		{StatusWarn, "warn", "⚠"},
		{StatusFail, "fail", "✗"},
		{Status(42), "unknown", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.status.String())
			assert.Equal(t, tt.symbol, tt.status.Symbol())
		})
	}
}

func TestReport(t *testing.T) {
	r := &Report{}
	r.AddCheck(CheckResult{Category: "A", Status: StatusPass, Message: "first"})
	r.AddCheck(CheckResult{Category: "B", Status: StatusWarn, Message: "second", Details: "line1\nline2", FixHint: "do it"})
	r.AddCheck(CheckResult{Category: "A", Status: StatusFail, Message: "third", FixHint: "fix it"})

	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 1, r.Warnings)
	assert.Equal(t, 1, r.Errors)
	assert.True(t, r.HasErrors())

	var buf bytes.Buffer
	r.Print(&buf, true)
	want := "\nA\n" +
		"  ✓ first\n" +
		"  ✗ third\n" +
		"      Fix: fix it\n" +
		"\nB\n" +
		"  ⚠ second\n" +
		"      line1\n" +
		"      line2\n" +
		"      Fix: do it\n" +
		"\nSummary: 1 passed, 1 warnings, 1 errors\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	r.Print(&buf, false)
	assert.NotContains(t, buf.String(), "line1")
}

func TestCheckSchemaFile(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		missing    bool
		wantStatus []Status
		wantDefs   bool
	}{
		{
			name:       "valid",
			content:    validSchema,
			wantStatus: []Status{StatusPass, StatusPass, StatusPass},
			wantDefs:   true,
		},
		{
			name:       "missing",
			missing:    true,
			wantStatus: []Status{StatusFail},
		},
		{
			name:       "invalid",
			content:    "tables:\n  - name: users\n    columns: []\n",
			wantStatus: []Status{StatusPass, StatusFail},
		},
		{
			name: "cycle",
			content: `
tables:
  - name: a
    columns:
      - name: b_id
        type: BIGINT
        references: b.id
      - name: id
        type: BIGINT
        primary_key: true
  - name: b
    columns:
      - name: a_id
        type: BIGINT
        references: a.id
      - name: id
        type: BIGINT
        primary_key: true
`,
			wantStatus: []Status{StatusPass, StatusPass, StatusFail},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nope.yaml")
			if !tt.missing {
				path = writeSchema(t, tt.content)
			}
			d := New(nil, path)
			r := &Report{}
			d.checkSchemaFile(r)

			var got []Status
			for _, c := range r.Checks {
				assert.Equal(t, "Schema File", c.Category)
				got = append(got, c.Status)
			}
			assert.Equal(t, tt.wantStatus, got)
			assert.Equal(t, tt.wantDefs, d.defs != nil)
		})
	}
}

func TestColumnsStatement(t *testing.T) {
	q, err := columnsStatement("users").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT information_schema.columns.column_name, information_schema.columns.is_nullable "+
		"FROM information_schema.columns "+
		"WHERE information_schema.columns.table_schema = current_schema() AND information_schema.columns.table_name = $1 "+
		"ORDER BY information_schema.columns.ordinal_position ASC;", q.SQL)
	assert.Equal(t, []any{"users"}, q.Args)
}

func TestCompareTable(t *testing.T) {
	defs, err := schema.Parse([]byte(validSchema))
	require.NoError(t, err)
	def := defs[0]

	tests := []struct {
		name     string
		cols     []dbColumn
		want     []Status
		contains string
	}{
		{
			name: "match",
			cols: []dbColumn{{Name: "id"}, {Name: "email"}, {Name: "nickname", Nullable: true}},
			want: []Status{StatusPass},
		},
		{
			name:     "absent",
			want:     []Status{StatusFail},
			contains: "does not exist",
		},
		{
			name:     "missing column",
			cols:     []dbColumn{{Name: "id"}, {Name: "nickname", Nullable: true}},
			want:     []Status{StatusFail},
			contains: "missing 1 columns",
		},
		{
			name:     "nullability",
			cols:     []dbColumn{{Name: "id"}, {Name: "email", Nullable: true}, {Name: "nickname", Nullable: true}},
			want:     []Status{StatusWarn},
			contains: "different nullability",
		},
		{
			name:     "extra column",
			cols:     []dbColumn{{Name: "id"}, {Name: "email"}, {Name: "nickname", Nullable: true}, {Name: "legacy"}},
			want:     []Status{StatusWarn},
			contains: "not in the schema file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := compareTable(def, tt.cols)
			var got []Status
			for _, c := range checks {
				got = append(got, c.Status)
			}
			assert.Equal(t, tt.want, got)
			if tt.contains != "" {
				assert.Contains(t, checks[0].Message, tt.contains)
			}
		})
	}
}
