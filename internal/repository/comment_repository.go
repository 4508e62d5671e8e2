package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizbook/internal/models"
)

const commentViewSelect = `
	SELECT c.*, u.id AS "author.id", u.username AS "author.username"
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

type commentRepository struct {
	db sqlx.ExtContext
}

func NewCommentRepository(db sqlx.ExtContext) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (id, author_id, test_id, body, created_at, updated_at)
		VALUES (:id, :author_id, :test_id, :body, :created_at, :updated_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, comment)
	return wrapErr(err, "create comment")
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment
	if err := sqlx.GetContext(ctx, r.db, &comment, `SELECT * FROM comments WHERE id = $1`, commentID); err != nil {
		return nil, wrapErr(err, "get comment")
	}
	return &comment, nil
}

func (r *commentRepository) LockByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment
	if err := sqlx.GetContext(ctx, r.db, &comment, `SELECT * FROM comments WHERE id = $1 FOR UPDATE`, commentID); err != nil {
		return nil, wrapErr(err, "lock comment")
	}
	return &comment, nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, commentID, body string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET body = $2, updated_at = NOW() WHERE id = $1`, commentID, body)
	if err != nil {
		return wrapErr(err, "update comment")
	}
	return requireAffected(res, "update comment")
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return wrapErr(err, "delete comment")
	}
	return requireAffected(res, "delete comment")
}

func (r *commentRepository) GetView(ctx context.Context, commentID string) (*models.CommentView, error) {
	var view models.CommentView
	if err := sqlx.GetContext(ctx, r.db, &view, commentViewSelect+` WHERE c.id = $1`, commentID); err != nil {
		return nil, wrapErr(err, "get comment view")
	}
	return &view, nil
}

func (r *commentRepository) ListViewsByTest(ctx context.Context, testID string) ([]models.CommentView, error) {
	views := []models.CommentView{}
	query := commentViewSelect + ` WHERE c.test_id = $1 ORDER BY c.created_at`
	if err := sqlx.SelectContext(ctx, r.db, &views, query, testID); err != nil {
		return nil, wrapErr(err, "list comments")
	}
	return views, nil
}

// LockByTest row-locks every comment on a test, in id order.
func (r *commentRepository) LockByTest(ctx context.Context, testID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := sqlx.SelectContext(ctx, r.db, &comments,
		`SELECT * FROM comments WHERE test_id = $1 ORDER BY id FOR UPDATE`, testID); err != nil {
		return nil, wrapErr(err, "lock comments by test")
	}
	return comments, nil
}

func (r *commentRepository) AddAnswer(ctx context.Context, commentID, answerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET answers = array_append(answers, $2) WHERE id = $1 AND NOT ($2 = ANY(answers))`,
		commentID, answerID)
	if err != nil {
		return false, wrapErr(err, "add comment answer")
	}
	return affected(res, "add comment answer")
}

func (r *commentRepository) RemoveAnswer(ctx context.Context, commentID, answerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE comments SET answers = array_remove(answers, $2) WHERE id = $1`, commentID, answerID)
	return wrapErr(err, "remove comment answer")
}

func (r *commentRepository) AdjustLikes(ctx context.Context, commentID string, delta int) (int, error) {
	var likes int
	err := sqlx.GetContext(ctx, r.db, &likes,
		`UPDATE comments SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`, commentID, delta)
	if err != nil {
		return 0, wrapErr(err, "adjust comment likes")
	}
	return likes, nil
}
