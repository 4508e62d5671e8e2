package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizbook/internal/models"
)

type tokenRepository struct {
	db sqlx.ExtContext
}

func NewTokenRepository(db sqlx.ExtContext) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.TokenID == "" {
		token.TokenID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES (:id, :user_id, :token, :expires_at, :created_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, token)
	return wrapErr(err, "create refresh token")
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := sqlx.GetContext(ctx, r.db, &stored, `SELECT * FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return nil, wrapErr(err, "get refresh token")
	}
	return &stored, nil
}

func (r *tokenRepository) DeleteByToken(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return wrapErr(err, "delete refresh token")
	}
	return requireAffected(res, "delete refresh token")
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrapErr(err, "delete expired refresh tokens")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "delete expired refresh tokens")
	}
	return n, nil
}
