package pgquery_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/pgquery"
)

type codeOnlyErr struct{ code string }

func (e codeOnlyErr) Error() string    { return "driver error" }
func (e codeOnlyErr) SQLState() string { return e.code }

func TestSQLState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"pgx", &pgconn.PgError{Code: "23505"}, "23505"},
		{"wrapped pgx", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "42P01"}), "42P01"},
		{"lib/pq", &pq.Error{Code: "23503"}, "23503"},
		{"sqlstate method", codeOnlyErr{code: "42703"}, "42703"},
		{"message with sqlstate", errors.New(`relation "x" does not exist (SQLSTATE 42P01)`), "42P01"},
		{"message with sqlstate colon", errors.New("boom SQLSTATE: 23502"), "23502"},
		{"plain error", errors.New("connection refused"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgquery.SQLState(tt.err))
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		is     func(error) bool
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, pgquery.ErrUniqueViolation, pgquery.IsUniqueViolationErr},
		{"foreign key", &pq.Error{Code: "23503"}, pgquery.ErrForeignKeyViolation, pgquery.IsForeignKeyViolationErr},
		{"not null", &pgconn.PgError{Code: "23502"}, pgquery.ErrNotNullViolation, pgquery.IsNotNullViolationErr},
		{"undefined table", &pq.Error{Code: "42P01"}, pgquery.ErrUndefinedTable, pgquery.IsUndefinedTableErr},
		{"undefined column", &pgconn.PgError{Code: "42703"}, pgquery.ErrUndefinedColumn, pgquery.IsUndefinedColumnErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pgquery.MapError("exec", tt.err)
			require.ErrorIs(t, err, tt.target)
			assert.True(t, tt.is(err))
			assert.ErrorIs(t, err, tt.err, "driver error stays in the chain")
		})
	}

	t.Run("unknown code keeps operation", func(t *testing.T) {
		driverErr := errors.New("connection reset")
		err := pgquery.MapError("query", driverErr)
		require.ErrorIs(t, err, driverErr)
		assert.Equal(t, "query: connection reset", err.Error())
		assert.False(t, pgquery.IsUniqueViolationErr(err))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, pgquery.MapError("exec", nil))
	})

	t.Run("pgx error reachable with errors.As", func(t *testing.T) {
		err := pgquery.MapError("exec", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "users_email_key", pgErr.ConstraintName)
	})
}

func TestSentinelErrors(t *testing.T) {
	for _, err := range []error{
		pgquery.ErrArgumentsTaken,
		pgquery.ErrNoColumns,
		pgquery.ErrNoRows,
		pgquery.ErrMissingConflictTarget,
		pgquery.ErrUnknownColumn,
		pgquery.ErrUniqueViolation,
		pgquery.ErrForeignKeyViolation,
		pgquery.ErrNotNullViolation,
		pgquery.ErrUndefinedTable,
		pgquery.ErrUndefinedColumn,
	} {
		t.Run(err.Error(), func(t *testing.T) {
			assert.Contains(t, err.Error(), "pgquery: ")
		})
	}

	wrapped := fmt.Errorf("build: %w", pgquery.ErrNoColumns)
	assert.True(t, pgquery.IsNoColumnsErr(wrapped))
	assert.False(t, pgquery.IsNoColumnsErr(errors.New("other error")))
}
