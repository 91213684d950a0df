package pgquery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Sentinel errors returned while building statements. They indicate a
// statement that cannot be rendered, never a database failure.
var (
	// ErrArgumentsTaken is returned by Build when the statement was already
	// built. A statement's arguments can be drained exactly once; build a new
	// statement instead of rebuilding an old one.
	ErrArgumentsTaken = errors.New("pgquery: arguments already taken")

	// ErrNoColumns is returned when an INSERT or UPDATE has nothing to set.
	ErrNoColumns = errors.New("pgquery: no columns set")

	// ErrNoRows is returned when a multi-row INSERT has no rows.
	ErrNoRows = errors.New("pgquery: no rows to insert")

	// ErrMissingConflictTarget is returned when an ON CONFLICT clause declares
	// an action but neither conflict columns nor a constraint.
	ErrMissingConflictTarget = errors.New("pgquery: conflict clause has no target")

	// ErrUnknownColumn is returned when a row sets a column the table does not
	// declare.
	ErrUnknownColumn = errors.New("pgquery: column not in table")
)

// Sentinel errors mapped from PostgreSQL errors by Runner. The original
// driver error stays in the chain, so errors.As still reaches *pgconn.PgError
// or *pq.Error.
var (
	// ErrUniqueViolation maps SQLSTATE 23505.
	ErrUniqueViolation = errors.New("pgquery: unique violation")

	// ErrForeignKeyViolation maps SQLSTATE 23503.
	ErrForeignKeyViolation = errors.New("pgquery: foreign key violation")

	// ErrNotNullViolation maps SQLSTATE 23502.
	ErrNotNullViolation = errors.New("pgquery: not null violation")

	// ErrUndefinedTable maps SQLSTATE 42P01. Run `pgquery migrate` to create
	// the tables declared in the schema file.
	ErrUndefinedTable = errors.New("pgquery: undefined table")

	// ErrUndefinedColumn maps SQLSTATE 42703. The database schema is behind
	// the schema file; `pgquery doctor` lists the missing columns.
	ErrUndefinedColumn = errors.New("pgquery: undefined column")
)

// IsArgumentsTakenErr returns true if err is or wraps ErrArgumentsTaken.
func IsArgumentsTakenErr(err error) bool {
	return errors.Is(err, ErrArgumentsTaken)
}

// IsNoColumnsErr returns true if err is or wraps ErrNoColumns.
func IsNoColumnsErr(err error) bool {
	return errors.Is(err, ErrNoColumns)
}

// IsUniqueViolationErr returns true if err is or wraps ErrUniqueViolation.
func IsUniqueViolationErr(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsForeignKeyViolationErr returns true if err is or wraps ErrForeignKeyViolation.
func IsForeignKeyViolationErr(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}

// IsNotNullViolationErr returns true if err is or wraps ErrNotNullViolation.
func IsNotNullViolationErr(err error) bool {
	return errors.Is(err, ErrNotNullViolation)
}

// IsUndefinedTableErr returns true if err is or wraps ErrUndefinedTable.
func IsUndefinedTableErr(err error) bool {
	return errors.Is(err, ErrUndefinedTable)
}

// IsUndefinedColumnErr returns true if err is or wraps ErrUndefinedColumn.
func IsUndefinedColumnErr(err error) bool {
	return errors.Is(err, ErrUndefinedColumn)
}

// PostgreSQL error codes for error mapping.
const (
	pgNotNullViolation    = "23502" // not_null_violation
	pgForeignKeyViolation = "23503" // foreign_key_violation
	pgUniqueViolation     = "23505" // unique_violation
	pgUndefinedTable      = "42P01" // undefined_table
	pgUndefinedColumn     = "42703" // undefined_column
)

var sqlStateErrors = map[string]error{
	pgNotNullViolation:    ErrNotNullViolation,
	pgForeignKeyViolation: ErrForeignKeyViolation,
	pgUniqueViolation:     ErrUniqueViolation,
	pgUndefinedTable:      ErrUndefinedTable,
	pgUndefinedColumn:     ErrUndefinedColumn,
}

// MapError wraps a driver error in the matching sentinel error. Errors
// without a known SQLSTATE are wrapped with the operation name only.
// A nil err returns nil.
func MapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if sentinel, ok := sqlStateErrors[SQLState(err)]; ok {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// SQLState extracts the SQLSTATE code from a PostgreSQL error.
// Works with both supported drivers:
//   - pgx: *pgconn.PgError
//   - lib/pq: *pq.Error
//
// Wrapped errors are unwrapped. Returns empty string if the error doesn't
// carry a SQLSTATE.
func SQLState(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	// Other drivers and wrappers
	type sqlStateErr interface{ SQLState() string }
	var se sqlStateErr
	if errors.As(err, &se) {
		return se.SQLState()
	}

	// Fallback: string matching for known patterns (last resort)
	// Format: "... (SQLSTATE 42P01)" or "SQLSTATE: 42P01"
	errStr := err.Error()
	for _, prefix := range []string{"SQLSTATE ", "SQLSTATE: "} {
		if idx := strings.Index(errStr, prefix); idx >= 0 {
			start := idx + len(prefix)
			if start+5 <= len(errStr) {
				return errStr[start : start+5]
			}
		}
	}

	return ""
}
