// Package pgquery builds PostgreSQL statements from typed column
// descriptors and renders them with positional $N arguments.
//
// # Module Structure
//
//   - github.com/pthm/pgquery: statement builders, Runner, errors, pagination.
//   - pkg/table: table and column descriptors (usually generated).
//   - pkg/expr: the expression tree (filters, functions, math, sub-selects,
//     joins, ON CONFLICT).
//   - pkg/args: the $N argument allocator.
//   - pkg/schema, pkg/migrator, pkg/clientgen: YAML schema files, DDL
//     migration and descriptor code generation, used by the pgquery CLI.
//
// # Basic Usage
//
// Describe tables once, typically with `pgquery generate client`:
//
//	var (
//		Users     = table.MustNew("users", table.PK("id"), table.Col("email"), table.Col("age"))
//		UserID    = Users.MustColumn("id")
//		UserEmail = Users.MustColumn("email")
//		UserAge   = Users.MustColumn("age")
//	)
//
// Then build statements:
//
//	q, err := pgquery.Select(Users).
//		Columns(UserID, UserEmail).
//		Where(expr.Col(UserAge).Between(18, 30)).
//		Build()
//	// q.SQL:  SELECT users.id, users.email FROM users WHERE users.age BETWEEN $1 AND $2;
//	// q.Args: []any{18, 30}
//
// Literal values are never interpolated into SQL text. Each one becomes a
// placeholder, numbered in the order the statement lowers its clauses.
//
// # Execution
//
// Runner sends built statements through *sql.DB, *sql.Tx, or *sql.Conn and
// maps PostgreSQL errors to sentinel errors:
//
//	r := pgquery.NewRunner(db, pgquery.WithLogger(slog.Default()))
//	_, err := r.Exec(ctx, pgquery.Insert(Users).Set(UserEmail, "a@example.com"))
//	if pgquery.IsUniqueViolationErr(err) {
//		// email already taken
//	}
//
// # Single Use
//
// A statement builder owns the arguments it collects and hands them out
// once. Calling Build again returns ErrArgumentsTaken; create a new builder
// per execution.
package pgquery
