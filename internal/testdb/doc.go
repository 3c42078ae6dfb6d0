//go:build integration

// Package testdb provides utilities for tests that run against a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test ends, so
// they never see each other's rows and need no cleanup:
//
//	func TestUserStore_Create(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Open skips the test when no database URL is configured, so the package is
// only compiled with the integration build tag.
package testdb
