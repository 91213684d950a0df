package pgquery_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/expr"
)

// recordingDB records statements and fails with err when set.
type recordingDB struct {
	sql  []string
	args [][]any
	err  error
}

func (d *recordingDB) record(query string, args []any) {
	d.sql = append(d.sql, query)
	d.args = append(d.args, args)
}

func (d *recordingDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	d.record(query, args)
	if d.err != nil {
		return nil, d.err
	}
	return driverResult(1), nil
}

func (d *recordingDB) QueryContext(_ context.Context, query string, args ...any) (*sql.Rows, error) {
	d.record(query, args)
	return nil, d.err
}

func (d *recordingDB) QueryRowContext(_ context.Context, query string, args ...any) *sql.Row {
	d.record(query, args)
	return nil
}

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, errors.New("not supported") }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestRunner_Exec(t *testing.T) {
	db := &recordingDB{}
	r := pgquery.NewRunner(db)

	res, err := r.Exec(context.Background(), pgquery.Update(testTable).
		Set(testEmail, "a@example.com").
		Where(expr.Col(testID).Equals(3)))
	require.NoError(t, err)

	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.Len(t, db.sql, 1)
	assert.Equal(t, "UPDATE test_table SET email = $1 WHERE test_table.id = $2;", db.sql[0])
	assert.Equal(t, []any{"a@example.com", 3}, db.args[0])
}

func TestRunner_MapsDriverErrors(t *testing.T) {
	db := &recordingDB{err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}
	r := pgquery.NewRunner(db)

	_, err := r.Exec(context.Background(), pgquery.Insert(testTable).Set(testEmail, "a@example.com"))
	require.Error(t, err)
	assert.True(t, pgquery.IsUniqueViolationErr(err))

	db.err = &pgconn.PgError{Code: "42P01"}
	_, err = r.Query(context.Background(), pgquery.Select(testTable))
	require.Error(t, err)
	assert.True(t, pgquery.IsUndefinedTableErr(err))
}

func TestRunner_BuildErrorSkipsDatabase(t *testing.T) {
	db := &recordingDB{}
	r := pgquery.NewRunner(db)

	_, err := r.Exec(context.Background(), pgquery.Insert(testTable))
	require.ErrorIs(t, err, pgquery.ErrNoColumns)

	_, err = r.QueryRow(context.Background(), pgquery.Update(testTable))
	require.ErrorIs(t, err, pgquery.ErrNoColumns)

	_, err = r.Count(context.Background(), rebuilt(pgquery.Count(testTable)))
	require.ErrorIs(t, err, pgquery.ErrArgumentsTaken)

	assert.Empty(t, db.sql)
}

func TestRunner_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := pgquery.NewRunner(&recordingDB{}, pgquery.WithLogger(logger))

	_, err := r.Exec(context.Background(), pgquery.Delete(testTable).Where(expr.Col(testID).Equals(1)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "executing statement")
	assert.Contains(t, out, "DELETE FROM test_table WHERE test_table.id = $1;")
	assert.Contains(t, out, "args=1")
}

func TestRunner_NilLoggerKeepsDefault(t *testing.T) {
	r := pgquery.NewRunner(&recordingDB{}, pgquery.WithLogger(nil))
	_, err := r.Exec(context.Background(), pgquery.Delete(testTable))
	require.NoError(t, err)
}

func rebuilt(c *pgquery.CountBuilder) *pgquery.CountBuilder {
	pgquery.MustBuild(c)
	return c
}
