package pgquery_test

import "github.com/pthm/pgquery/pkg/table"

var (
	testTable = table.MustNew("test_table",
		table.PK("id"),
		table.Col("first_name"),
		table.Col("last_name"),
		table.Col("age"),
		table.Col("email"),
		table.Col("another_table_id"),
		table.Col("created_at"),
	)
	testID             = testTable.MustColumn("id")
	testFirstName      = testTable.MustColumn("first_name")
	testLastName       = testTable.MustColumn("last_name")
	testAge            = testTable.MustColumn("age")
	testEmail          = testTable.MustColumn("email")
	testAnotherTableID = testTable.MustColumn("another_table_id")
	testCreatedAt      = testTable.MustColumn("created_at")

	anotherTable = table.MustNew("another_table",
		table.PK("id"),
		table.Col("phone"),
		table.Col("age"),
	)
	anotherID    = anotherTable.MustColumn("id")
	anotherPhone = anotherTable.MustColumn("phone")
	anotherAge   = anotherTable.MustColumn("age")

	testToAnother = table.NewRelation(testAnotherTableID, anotherID)
)
