package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"quizbook/internal/models"
)

const testViewSelect = `
	SELECT t.*, u.id AS "author.id", u.username AS "author.username", u.avatar_url AS "author.avatar_url"
	FROM tests t
	JOIN users u ON u.id = t.author_id
`

func (r TestRef) column() (string, error) {
	switch r {
	case TestComments, TestCommentAnswers:
		return string(r), nil
	}
	return "", fmt.Errorf("unknown test reference set %q", string(r))
}

type testRepository struct {
	db sqlx.ExtContext
}

func NewTestRepository(db sqlx.ExtContext) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	if test.TestID == "" {
		test.TestID = uuid.New().String()
	}
	now := time.Now().UTC()
	test.CreatedAt = now
	test.UpdatedAt = now

	query := `
		INSERT INTO tests (id, author_id, title, description, image_url, questions, created_at, updated_at)
		VALUES (:id, :author_id, :title, :description, :image_url, :questions, :created_at, :updated_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, test)
	return wrapErr(err, "create test")
}

func (r *testRepository) GetByID(ctx context.Context, testID string) (*models.Test, error) {
	var test models.Test
	if err := sqlx.GetContext(ctx, r.db, &test, `SELECT * FROM tests WHERE id = $1`, testID); err != nil {
		return nil, wrapErr(err, "get test")
	}
	return &test, nil
}

func (r *testRepository) LockByID(ctx context.Context, testID string) (*models.Test, error) {
	var test models.Test
	if err := sqlx.GetContext(ctx, r.db, &test, `SELECT * FROM tests WHERE id = $1 FOR UPDATE`, testID); err != nil {
		return nil, wrapErr(err, "lock test")
	}
	return &test, nil
}

func (r *testRepository) Update(ctx context.Context, test *models.Test) error {
	test.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tests
		SET title = :title, description = :description, questions = :questions, updated_at = :updated_at
		WHERE id = :id
	`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, test)
	if err != nil {
		return wrapErr(err, "update test")
	}
	return requireAffected(res, "update test")
}

func (r *testRepository) Delete(ctx context.Context, testID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, testID)
	if err != nil {
		return wrapErr(err, "delete test")
	}
	return requireAffected(res, "delete test")
}

func (r *testRepository) SetImage(ctx context.Context, testID, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tests SET image_url = $2, updated_at = NOW() WHERE id = $1`, testID, imageURL)
	if err != nil {
		return wrapErr(err, "set test image")
	}
	return requireAffected(res, "set test image")
}

func (r *testRepository) GetView(ctx context.Context, testID string) (*models.TestView, error) {
	var view models.TestView
	if err := sqlx.GetContext(ctx, r.db, &view, testViewSelect+` WHERE t.id = $1`, testID); err != nil {
		return nil, wrapErr(err, "get test view")
	}
	return &view, nil
}

func (r *testRepository) selectViews(ctx context.Context, op, query string, args ...interface{}) ([]models.TestView, error) {
	views := []models.TestView{}
	if err := sqlx.SelectContext(ctx, r.db, &views, query, args...); err != nil {
		return nil, wrapErr(err, op)
	}
	return views, nil
}

// ListViews keeps the order of ids; ids with no test are left out.
func (r *testRepository) ListViews(ctx context.Context, ids []string) ([]models.TestView, error) {
	if len(ids) == 0 {
		return []models.TestView{}, nil
	}
	return r.selectViews(ctx, "list tests by ids",
		testViewSelect+` WHERE t.id = ANY($1::text[]) ORDER BY array_position($1::text[], t.id)`, pq.Array(ids))
}

func (r *testRepository) ListLatest(ctx context.Context, limit int) ([]models.TestView, error) {
	return r.selectViews(ctx, "list latest tests",
		testViewSelect+` ORDER BY t.created_at DESC LIMIT $1`, limit)
}

func (r *testRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.TestView, error) {
	return r.selectViews(ctx, "list tests by author",
		testViewSelect+` WHERE t.author_id = $1 ORDER BY t.created_at DESC`, authorID)
}

func (r *testRepository) Search(ctx context.Context, query string, limit int) ([]models.TestView, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.selectViews(ctx, "search tests",
		testViewSelect+` WHERE t.title ILIKE $1 OR t.description ILIKE $1 ORDER BY t.created_at DESC LIMIT $2`,
		pattern, limit)
}

func (r *testRepository) Page(ctx context.Context, limit, offset int) ([]models.TestView, error) {
	return r.selectViews(ctx, "page tests",
		testViewSelect+` ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *testRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM tests`); err != nil {
		return 0, wrapErr(err, "count tests")
	}
	return count, nil
}

func (r *testRepository) AddRef(ctx context.Context, testID string, ref TestRef, id string) (bool, error) {
	col, err := ref.column()
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`UPDATE tests SET %[1]s = array_append(%[1]s, $2) WHERE id = $1 AND NOT ($2 = ANY(%[1]s))`, col)

	res, err := r.db.ExecContext(ctx, query, testID, id)
	if err != nil {
		return false, wrapErr(err, "add test "+col)
	}
	return affected(res, "add test "+col)
}

func (r *testRepository) RemoveRef(ctx context.Context, testID string, ref TestRef, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := ref.column()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE tests
		SET %[1]s = ARRAY(SELECT v FROM unnest(%[1]s) WITH ORDINALITY AS t(v, n) WHERE NOT (v = ANY($2)) ORDER BY n)
		WHERE id = $1
	`, col)

	_, err = r.db.ExecContext(ctx, query, testID, pq.Array(ids))
	return wrapErr(err, "remove test "+col)
}

func (r *testRepository) adjust(ctx context.Context, col, testID string, delta int) (int, error) {
	var value int
	query := fmt.Sprintf(`UPDATE tests SET %[1]s = GREATEST(%[1]s + $2, 0) WHERE id = $1 RETURNING %[1]s`, col)
	if err := sqlx.GetContext(ctx, r.db, &value, query, testID, delta); err != nil {
		return 0, wrapErr(err, "adjust test "+col)
	}
	return value, nil
}

func (r *testRepository) AdjustLikes(ctx context.Context, testID string, delta int) (int, error) {
	return r.adjust(ctx, "likes", testID, delta)
}

func (r *testRepository) AdjustSaves(ctx context.Context, testID string, delta int) (int, error) {
	return r.adjust(ctx, "saves", testID, delta)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
