package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*User)(nil)).
		Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	return db
}

func newTestRepo(t *testing.T) RepositoryManager {
	t.Helper()
	return NewRepositoryManager(newTestDB(t))
}

func newTestTokens() *TokenServiceImpl {
	return NewTokenService(
		[]byte("access-secret"),
		[]byte("refresh-secret"),
		"tally-test",
		nil,
	)
}

func seedUser(t *testing.T, repo RepositoryManager, email, password string) *User {
	t.Helper()

	user := &User{
		FullName: "Test User",
		Email:    email,
	}

	if password != "" {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}

	created, err := repo.Users().Register(context.Background(), user)
	require.NoError(t, err)

	return created
}
