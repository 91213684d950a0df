package test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/pgquery"
	"github.com/pthm/pgquery/internal/doctor"
	"github.com/pthm/pgquery/pkg/expr"
	"github.com/pthm/pgquery/pkg/migrator"
	"github.com/pthm/pgquery/pkg/table"
	"github.com/pthm/pgquery/test/testutil"
)

type fixtureTables struct {
	teams, users                   *table.Table
	teamID, teamName               table.Ref
	userID, email, name, age, tags table.Ref
	userTeam                       table.Ref
}

func tables(t *testing.T) fixtureTables {
	teams := testutil.Table(t, "teams")
	users := testutil.Table(t, "users")
	return fixtureTables{
		teams:    teams,
		users:    users,
		teamID:   teams.MustColumn("id"),
		teamName: teams.MustColumn("name"),
		userID:   users.MustColumn("id"),
		email:    users.MustColumn("email"),
		name:     users.MustColumn("name"),
		age:      users.MustColumn("age"),
		tags:     users.MustColumn("tags"),
		userTeam: users.MustColumn("team_id"),
	}
}

func TestRunner_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.DB(t)
	ctx := context.Background()
	tb := tables(t)
	r := pgquery.NewRunner(db)

	var id int64
	err := r.ScanRow(ctx, pgquery.Insert(tb.users).
		Set(tb.email, "ada@example.com").
		Set(tb.age, 36).
		Set(tb.tags, pq.Array([]string{"math", "engines"})).
		Returning(expr.ReturningColumns(tb.userID)), &id)
	require.NoError(t, err)
	assert.Positive(t, id)

	var (
		email string
		age   int
		tags  []string
	)
	err = r.ScanRow(ctx, pgquery.Select(tb.users).
		Columns(tb.email, tb.age, tb.tags).
		Where(expr.Col(tb.userID).Equals(id)), &email, &age, pq.Array(&tags))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
	assert.Equal(t, 36, age)
	assert.Equal(t, []string{"math", "engines"}, tags)

	res, err := r.Exec(ctx, pgquery.Update(tb.users).
		Where(expr.Col(tb.userID).Equals(id)).
		Set(tb.age, expr.M(tb.age).Add(1)).
		SetOptional(tb.name, (*string)(nil)))
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := r.Count(ctx, pgquery.Count(tb.users).Where(expr.Col(tb.age).GreaterThan(36)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	exists, err := r.Exists(ctx, pgquery.Exists(tb.users).Where(expr.Col(tb.tags).ArrayContains(pq.Array([]string{"math"}))))
	require.NoError(t, err)
	assert.True(t, exists)

	res, err = r.Exec(ctx, pgquery.Delete(tb.users).Where(expr.Col(tb.userID).EqualsAny([]int64{id})))
	require.NoError(t, err)
	n, err = res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	err = r.ScanRow(ctx, pgquery.Select(tb.users).Columns(tb.email).Where(expr.Col(tb.userID).Equals(id)), &email)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRunner_Upsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.DB(t)
	ctx := context.Background()
	tb := tables(t)
	r := pgquery.NewRunner(db)

	upsert := func(name string) pgquery.Statement {
		return pgquery.Insert(tb.teams).
			Set(tb.teamID, 7).
			Set(tb.teamName, name).
			OnConflict(expr.UpdateToExcluded([]table.Column{tb.teamID}, tb.teamName))
	}
	_, err := r.Exec(ctx, upsert("first"))
	require.NoError(t, err)
	_, err = r.Exec(ctx, upsert("second"))
	require.NoError(t, err)

	var name string
	require.NoError(t, r.ScanRow(ctx, pgquery.Select(tb.teams).Columns(tb.teamName).Where(expr.Col(tb.teamID).Equals(7)), &name))
	assert.Equal(t, "second", name)

	_, err = r.Exec(ctx, pgquery.Insert(tb.teams).
		Set(tb.teamID, 7).
		Set(tb.teamName, "ignored").
		OnConflict(expr.OnConflictColumns(tb.teamID).DoNothing()))
	require.NoError(t, err)
}

func TestRunner_JoinAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.DB(t)
	ctx := context.Background()
	tb := tables(t)

	fx := testutil.NewFixtures(ctx, db, tb.teams, tb.users)
	teamIDs, err := fx.CreateTeams(2)
	require.NoError(t, err)
	userIDs, err := fx.CreateUsers(25, teamIDs)
	require.NoError(t, err)
	require.Len(t, userIDs, 25)

	rel := table.NewRelation(tb.userTeam, tb.teamID)
	params := pgquery.PageParams{PageSize: 10, PageNumber: 3}
	s := pgquery.Select(tb.users).
		Columns(tb.userID).
		Join(expr.JoinOn(expr.JoinInner, rel).Select(tb.teamName)).
		OrderBy(expr.Asc(tb.userID)).
		Page(params).
		WithTotalCount("total")

	rows, err := pgquery.NewRunner(db).Query(ctx, s)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var (
		ids   []int64
		total int64
	)
	for rows.Next() {
		var (
			id   int64
			team string
		)
		require.NoError(t, rows.Scan(&id, &team, &total))
		assert.Contains(t, []string{"team_0", "team_1"}, team)
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())

	page := pgquery.NewPage(ids, total, params)
	assert.EqualValues(t, 25, page.Total)
	assert.EqualValues(t, 3, page.NumberOfPages)
	assert.Equal(t, userIDs[20:], page.Items)
}

func TestErrorMapping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	drivers := map[string]func(t *testing.T) *sql.DB{
		"pgx": func(t *testing.T) *sql.DB { return testutil.DB(t) },
		"lib/pq": func(t *testing.T) *sql.DB {
			db, err := sql.Open("postgres", testutil.DSN(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return db
		},
	}

	for driver, open := range drivers {
		t.Run(driver, func(t *testing.T) {
			db := open(t)
			ctx := context.Background()
			tb := tables(t)
			r := pgquery.NewRunner(db)

			_, err := r.Exec(ctx, pgquery.Insert(tb.users).Set(tb.userID, 1000).Set(tb.email, "a@example.com"))
			require.NoError(t, err)

			_, err = r.Exec(ctx, pgquery.Insert(tb.users).Set(tb.userID, 1000).Set(tb.email, "b@example.com"))
			assert.True(t, pgquery.IsUniqueViolationErr(err), "got %v", err)

			_, err = r.Exec(ctx, pgquery.Insert(tb.users).Set(tb.email, "c@example.com").Set(tb.userTeam, 999))
			assert.True(t, pgquery.IsForeignKeyViolationErr(err), "got %v", err)

			_, err = r.Exec(ctx, pgquery.Insert(tb.users).Set(tb.email, nil))
			assert.True(t, pgquery.IsNotNullViolationErr(err), "got %v", err)

			missing := table.MustNew("missing_table", table.Col("id"))
			_, err = r.Exec(ctx, pgquery.Delete(missing))
			assert.True(t, pgquery.IsUndefinedTableErr(err), "got %v", err)

			ghost := table.MustNew("users", table.Col("ghost"))
			_, err = r.Exec(ctx, pgquery.Select(ghost).Columns(ghost.MustColumn("ghost")))
			assert.True(t, pgquery.IsUndefinedColumnErr(err), "got %v", err)
		})
	}
}

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgquery.schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Schema()), 0o644))
	return path
}

func TestMigrator_Status(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.DB(t)
	ctx := context.Background()
	m := migrator.NewMigrator(db, writeSchema(t))

	status, err := m.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.SchemaExists)
	assert.True(t, status.UpToDate)
	assert.Empty(t, status.Missing())
	require.NotNil(t, status.LastMigration)
	assert.ElementsMatch(t, []string{"teams", "users"}, status.LastMigration.TableNames)

	skipped, err := migrator.MigrateWithOptions(ctx, db, m.SchemaPath(), migrator.MigrateOptions{})
	require.NoError(t, err)
	assert.True(t, skipped, "unchanged schema should be skipped")

	skipped, err = migrator.MigrateWithOptions(ctx, db, m.SchemaPath(), migrator.MigrateOptions{Force: true})
	require.NoError(t, err)
	assert.False(t, skipped)
}

func TestMigrator_EmptyDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.EmptyDB(t)
	ctx := context.Background()
	m := migrator.NewMigrator(db, writeSchema(t))

	has, err := m.HasMigrationsTable(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	last, err := m.GetLastMigration(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	status, err := m.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.UpToDate)
	assert.ElementsMatch(t, []string{"teams", "users"}, status.Missing())

	require.NoError(t, migrator.Migrate(ctx, db, m.SchemaPath()))

	status, err = m.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.UpToDate)
	assert.Empty(t, status.Missing())
}

func TestDoctor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	schemaPath := writeSchema(t)

	t.Run("migrated database is healthy", func(t *testing.T) {
		report, err := doctor.New(testutil.DB(t), schemaPath).Run(ctx)
		require.NoError(t, err)
		assert.False(t, report.HasErrors())
		assert.Zero(t, report.Warnings)
	})

	t.Run("empty database reports missing tables", func(t *testing.T) {
		report, err := doctor.New(testutil.EmptyDB(t), schemaPath).Run(ctx)
		require.NoError(t, err)
		assert.True(t, report.HasErrors())
		assert.Equal(t, 2, report.Errors)
	})

	t.Run("extra column warns", func(t *testing.T) {
		db := testutil.DB(t)
		_, err := db.ExecContext(ctx, "ALTER TABLE users ADD COLUMN legacy TEXT")
		require.NoError(t, err)

		report, err := doctor.New(db, schemaPath).Run(ctx)
		require.NoError(t, err)
		assert.False(t, report.HasErrors())
		assert.Equal(t, 1, report.Warnings)
	})
}

func TestRunner_BuildErrorsSkipDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.DB(t)
	tb := tables(t)

	_, err := pgquery.NewRunner(db).Exec(context.Background(), pgquery.Insert(tb.users))
	assert.True(t, errors.Is(err, pgquery.ErrNoColumns))
}
