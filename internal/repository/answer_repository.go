package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizbook/internal/models"
)

const answerViewSelect = `
	SELECT a.*, u.id AS "author.id", u.username AS "author.username"
	FROM answers a
	JOIN users u ON u.id = a.author_id
`

type answerRepository struct {
	db sqlx.ExtContext
}

func NewAnswerRepository(db sqlx.ExtContext) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	if answer.AnswerID == "" {
		answer.AnswerID = uuid.New().String()
	}
	now := time.Now().UTC()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	query := `
		INSERT INTO answers (id, author_id, test_id, parent_comment_id, body, created_at, updated_at)
		VALUES (:id, :author_id, :test_id, :parent_comment_id, :body, :created_at, :updated_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, answer)
	return wrapErr(err, "create answer")
}

func (r *answerRepository) GetByID(ctx context.Context, answerID string) (*models.Answer, error) {
	var answer models.Answer
	if err := sqlx.GetContext(ctx, r.db, &answer, `SELECT * FROM answers WHERE id = $1`, answerID); err != nil {
		return nil, wrapErr(err, "get answer")
	}
	return &answer, nil
}

func (r *answerRepository) LockByID(ctx context.Context, answerID string) (*models.Answer, error) {
	var answer models.Answer
	if err := sqlx.GetContext(ctx, r.db, &answer, `SELECT * FROM answers WHERE id = $1 FOR UPDATE`, answerID); err != nil {
		return nil, wrapErr(err, "lock answer")
	}
	return &answer, nil
}

func (r *answerRepository) UpdateBody(ctx context.Context, answerID, body string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE answers SET body = $2, updated_at = NOW() WHERE id = $1`, answerID, body)
	if err != nil {
		return wrapErr(err, "update answer")
	}
	return requireAffected(res, "update answer")
}

func (r *answerRepository) Delete(ctx context.Context, answerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE id = $1`, answerID)
	if err != nil {
		return wrapErr(err, "delete answer")
	}
	return requireAffected(res, "delete answer")
}

func (r *answerRepository) DeleteByComment(ctx context.Context, commentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE parent_comment_id = $1`, commentID)
	if err != nil {
		return 0, wrapErr(err, "delete answers by comment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "delete answers by comment")
	}
	return n, nil
}

func (r *answerRepository) GetView(ctx context.Context, answerID string) (*models.AnswerView, error) {
	var view models.AnswerView
	if err := sqlx.GetContext(ctx, r.db, &view, answerViewSelect+` WHERE a.id = $1`, answerID); err != nil {
		return nil, wrapErr(err, "get answer view")
	}
	return &view, nil
}

func (r *answerRepository) ListViewsByComment(ctx context.Context, commentID string) ([]models.AnswerView, error) {
	views := []models.AnswerView{}
	query := answerViewSelect + ` WHERE a.parent_comment_id = $1 ORDER BY a.created_at`
	if err := sqlx.SelectContext(ctx, r.db, &views, query, commentID); err != nil {
		return nil, wrapErr(err, "list answers")
	}
	return views, nil
}

// LockByComment row-locks every answer under a comment, in id order.
func (r *answerRepository) LockByComment(ctx context.Context, commentID string) ([]models.Answer, error) {
	answers := []models.Answer{}
	if err := sqlx.SelectContext(ctx, r.db, &answers,
		`SELECT * FROM answers WHERE parent_comment_id = $1 ORDER BY id FOR UPDATE`, commentID); err != nil {
		return nil, wrapErr(err, "lock answers by comment")
	}
	return answers, nil
}

func (r *answerRepository) LockByTest(ctx context.Context, testID string) ([]models.Answer, error) {
	answers := []models.Answer{}
	if err := sqlx.SelectContext(ctx, r.db, &answers,
		`SELECT * FROM answers WHERE test_id = $1 ORDER BY id FOR UPDATE`, testID); err != nil {
		return nil, wrapErr(err, "lock answers by test")
	}
	return answers, nil
}

func (r *answerRepository) AdjustLikes(ctx context.Context, answerID string, delta int) (int, error) {
	var likes int
	err := sqlx.GetContext(ctx, r.db, &likes,
		`UPDATE answers SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`, answerID, delta)
	if err != nil {
		return 0, wrapErr(err, "adjust answer likes")
	}
	return likes, nil
}
