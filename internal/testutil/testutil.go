package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on&_busy_timeout=5000")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// SeedWords inserts words with english/native pairs "w<i>"/"n<i>" and returns their ids.
func SeedWords(t *testing.T, sqlDB *sql.DB, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		var id int64
		err := sqlDB.QueryRow(`INSERT INTO words (english, native) VALUES (?, ?) RETURNING id`,
			fmt.Sprintf("w%d", i), fmt.Sprintf("n%d", i)).Scan(&id)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// SeedUser inserts a user row with a zero session counter.
func SeedUser(t *testing.T, sqlDB *sql.DB, id int64) {
	_, err := sqlDB.Exec(`INSERT INTO users (id) VALUES (?)`, id)
	require.NoError(t, err)
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
