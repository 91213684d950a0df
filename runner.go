package pgquery

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// Querier executes queries against PostgreSQL.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer extends Querier with ExecContext.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Execer interface {
	Querier
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Runner builds statements and sends them to the database.
//
// A Runner holds only the database handle and a logger, so it is cheap to
// create and safe for concurrent use. Pass a *sql.Tx to run statements inside
// a transaction:
//
//	tx, _ := db.BeginTx(ctx, nil)
//	r := pgquery.NewRunner(tx)
//	_, err := r.Exec(ctx, pgquery.Delete(users).Where(expr.Col(userID).Equals(id)))
//
// Driver errors are mapped to the sentinel errors in this package
// (ErrUniqueViolation, ErrUndefinedTable, ...) with the driver error kept in
// the chain.
type Runner struct {
	db     Execer
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger logs every statement at debug level.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner over db.
func NewRunner(db Execer, opts ...RunnerOption) *Runner {
	r := &Runner{
		db:     db,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) build(ctx context.Context, s Statement) (Query, error) {
	q, err := s.Build()
	if err != nil {
		return Query{}, err
	}
	r.logger.DebugContext(ctx, "executing statement", "sql", q.SQL, "args", len(q.Args))
	return q, nil
}

// Exec runs a statement that returns no rows.
func (r *Runner) Exec(ctx context.Context, s Statement) (sql.Result, error) {
	q, err := r.build(ctx, s)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, MapError("exec", err)
	}
	return res, nil
}

// Query runs a statement that returns rows. The caller closes the rows.
func (r *Runner) Query(ctx context.Context, s Statement) (*sql.Rows, error) {
	q, err := r.build(ctx, s)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, MapError("query", err)
	}
	return rows, nil
}

// QueryRow runs a statement expected to return at most one row.
// The returned error only reports build failures; database errors surface
// from Scan. Use ScanRow to get mapped errors.
func (r *Runner) QueryRow(ctx context.Context, s Statement) (*sql.Row, error) {
	q, err := r.build(ctx, s)
	if err != nil {
		return nil, err
	}
	return r.db.QueryRowContext(ctx, q.SQL, q.Args...), nil
}

// ScanRow runs s and scans its single row into dest. It returns
// sql.ErrNoRows unwrapped when there is no row.
func (r *Runner) ScanRow(ctx context.Context, s Statement, dest ...any) error {
	row, err := r.QueryRow(ctx, s)
	if err != nil {
		return err
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return MapError("scan", err)
	}
	return nil
}

// Count runs c and returns the row count.
func (r *Runner) Count(ctx context.Context, c *CountBuilder) (int64, error) {
	var n int64
	if err := r.ScanRow(ctx, c, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Exists runs e and reports whether any row matched.
func (r *Runner) Exists(ctx context.Context, e *ExistsBuilder) (bool, error) {
	var ok bool
	if err := r.ScanRow(ctx, e, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
