package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func userColumns() []string {
	return []string{
		"id", "username", "email", "password_hash", "bio", "avatar_url", "is_activated", "activation_code",
		"likes", "show_liked_posts", "show_passed_tests", "followers", "followings", "liked_posts",
		"saved_posts", "liked_comments", "liked_answers", "created_tests", "comments", "answers", "created_at",
	}
}
