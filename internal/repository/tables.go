package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"quizbook/internal/models"
)

type tablesRepository struct {
	db sqlx.ExtContext
}

func NewTablesRepository(db sqlx.ExtContext) TablesRepository {
	return &tablesRepository{db: db}
}

func (r *tablesRepository) CountTablesDB(ctx context.Context) (int, error) {
	var count int

	err := sqlx.GetContext(ctx, r.db, &count, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
	`)
	if err != nil {
		return 0, wrapErr(err, "count tables")
	}

	return count, nil
}

func (r *tablesRepository) Counts(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats

	err := sqlx.GetContext(ctx, r.db, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM tests) AS tests,
			(SELECT COUNT(*) FROM comments) AS comments,
			(SELECT COUNT(*) FROM answers) AS answers,
			(SELECT COUNT(*) FROM refresh_tokens) AS refresh_tokens
	`)
	if err != nil {
		return nil, wrapErr(err, "count rows")
	}

	return &stats, nil
}
