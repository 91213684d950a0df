package migrator

import "github.com/pthm/pgquery"

// Execer is the minimal interface needed for schema migration operations.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Execer = pgquery.Execer
