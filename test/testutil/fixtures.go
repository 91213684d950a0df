package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/table"
)

// batchSize bounds the rows per INSERT so the argument count stays well
// below the PostgreSQL limit of 65535 parameters.
const batchSize = 1000

// Fixtures provides factory functions for creating test data in bulk.
// All functions use multi-row inserts built with pgquery.InsertMany.
type Fixtures struct {
	runner *pgquery.Runner
	ctx    context.Context
	teams  *table.Table
	users  *table.Table
}

// NewFixtures creates a new Fixtures instance for the test schema.
func NewFixtures(ctx context.Context, db *sql.DB, teams, users *table.Table) *Fixtures {
	return &Fixtures{
		runner: pgquery.NewRunner(db),
		ctx:    ctx,
		teams:  teams,
		users:  users,
	}
}

// CreateTeams creates n teams named team_0..team_n-1 and returns their IDs.
func (f *Fixtures) CreateTeams(n int) ([]int64, error) {
	name := f.teams.MustColumn("name")
	return f.insertBatches(f.teams, n, func(b *pgquery.InsertManyBuilder, i int) {
		b.Row(pgquery.CellOf(name, fmt.Sprintf("team_%d", i)))
	})
}

// CreateUsers creates n users spread round-robin over teamIDs and returns
// their IDs. A nil teamIDs leaves team_id NULL.
func (f *Fixtures) CreateUsers(n int, teamIDs []int64) ([]int64, error) {
	email := f.users.MustColumn("email")
	age := f.users.MustColumn("age")
	teamID := f.users.MustColumn("team_id")
	return f.insertBatches(f.users, n, func(b *pgquery.InsertManyBuilder, i int) {
		cells := []pgquery.Cell{
			pgquery.CellOf(email, fmt.Sprintf("user_%d@example.com", i)),
			pgquery.CellOf(age, 20+i%50),
		}
		if len(teamIDs) > 0 {
			cells = append(cells, pgquery.CellOf(teamID, teamIDs[i%len(teamIDs)]))
		}
		b.Row(cells...)
	})
}

func (f *Fixtures) insertBatches(t *table.Table, n int, row func(*pgquery.InsertManyBuilder, int)) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	pk, _ := t.PrimaryKey()

	ids := make([]int64, 0, n)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)

		b := pgquery.InsertMany(t).Returning(expr.ReturningColumns(pk))
		for i := start; i < end; i++ {
			row(b, i)
		}

		batch, err := f.scanIDs(b)
		if err != nil {
			return nil, fmt.Errorf("insert %s batch %d-%d: %w", t.Name(), start, end, err)
		}
		ids = append(ids, batch...)
	}
	return ids, nil
}

func (f *Fixtures) scanIDs(s pgquery.Statement) ([]int64, error) {
	rows, err := f.runner.Query(f.ctx, s)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
