// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests call MustOpen, which skips the test when no
// database URL is configured, so the suite stays runnable without one.
package testdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/migrations"
)

// EnvDatabaseURL names the environment variable holding the test database
// URL. Integration tests skip when it is unset.
const EnvDatabaseURL = "DATABASE_URL"

// URL returns the configured test database URL, or the empty string.
func URL() string {
	return os.Getenv(EnvDatabaseURL)
}

// MustOpen connects to the test database, applies the embedded migrations,
// and registers cleanup. It skips the test when no database is configured.
func MustOpen(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("skipping: %s not set", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "failed to ping test database")

	applySchema(t, db)
	return db
}

func applySchema(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(&testGooseLogger{t: t})
	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "."), "failed to apply migrations")
}

// WithTx executes a test function inside a transaction that is always rolled
// back, so tests sharing a database never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// testGooseLogger routes goose output through the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatalf(format, v...)
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Logf("%s", fmt.Sprintf(format, v...))
}
