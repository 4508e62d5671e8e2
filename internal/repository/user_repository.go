package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"quizbook/internal/models"
)

var userRefs = map[UserRef]bool{
	UserFollowers:     true,
	UserFollowings:    true,
	UserLikedPosts:    true,
	UserSavedPosts:    true,
	UserLikedComments: true,
	UserLikedAnswers:  true,
	UserCreatedTests:  true,
	UserComments:      true,
	UserAnswers:       true,
}

func (r UserRef) column() (string, error) {
	if !userRefs[r] {
		return "", fmt.Errorf("unknown user reference set %q", string(r))
	}
	return string(r), nil
}

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, bio, avatar_url, is_activated, activation_code,
			show_liked_posts, show_passed_tests, created_at)
		VALUES (:id, :username, :email, :password_hash, :bio, :avatar_url, :is_activated, :activation_code,
			:show_liked_posts, :show_passed_tests, :created_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, user)
	return wrapErr(err, "create user")
}

func (r *userRepository) get(ctx context.Context, op, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, args...); err != nil {
		return nil, wrapErr(err, op)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.get(ctx, "get user by id", `SELECT * FROM users WHERE id = $1`, userID)
}

func (r *userRepository) LockByID(ctx context.Context, userID string) (*models.User, error) {
	return r.get(ctx, "lock user", `SELECT * FROM users WHERE id = $1 FOR UPDATE`, userID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, "get user by email", `SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, "get user by username", `SELECT * FROM users WHERE username = $1`, username)
}

func (r *userRepository) GetByActivationCode(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, errors.Wrap(ErrNotFound, "get user by activation code")
	}
	return r.get(ctx, "get user by activation code", `SELECT * FROM users WHERE activation_code = $1`, code)
}

func (r *userRepository) Activate(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_activated = TRUE, activation_code = '' WHERE id = $1`, userID)
	if err != nil {
		return wrapErr(err, "activate user")
	}
	return requireAffected(res, "activate user")
}

func (r *userRepository) SetActivationCode(ctx context.Context, userID, code string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET activation_code = $2 WHERE id = $1`, userID, code)
	if err != nil {
		return wrapErr(err, "set activation code")
	}
	return requireAffected(res, "set activation code")
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = :username, bio = :bio, show_liked_posts = :show_liked_posts, show_passed_tests = :show_passed_tests
		WHERE id = :id
	`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, user)
	if err != nil {
		return wrapErr(err, "update user")
	}
	return requireAffected(res, "update user")
}

func (r *userRepository) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_url = $2 WHERE id = $1`, userID, avatarURL)
	if err != nil {
		return wrapErr(err, "set avatar")
	}
	return requireAffected(res, "set avatar")
}

// AddRef appends id to the reference set unless it is already present and
// reports whether the row changed.
func (r *userRepository) AddRef(ctx context.Context, userID string, ref UserRef, id string) (bool, error) {
	col, err := ref.column()
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`UPDATE users SET %[1]s = array_append(%[1]s, $2) WHERE id = $1 AND NOT ($2 = ANY(%[1]s))`, col)

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return false, wrapErr(err, "add "+col)
	}
	return affected(res, "add "+col)
}

func (r *userRepository) RemoveRef(ctx context.Context, userID string, ref UserRef, id string) (bool, error) {
	col, err := ref.column()
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`UPDATE users SET %[1]s = array_remove(%[1]s, $2) WHERE id = $1 AND $2 = ANY(%[1]s)`, col)

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return false, wrapErr(err, "remove "+col)
	}
	return affected(res, "remove "+col)
}

// RemoveRefEverywhere pulls ids from the reference set of every user holding
// any of them.
func (r *userRepository) RemoveRefEverywhere(ctx context.Context, ref UserRef, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := ref.column()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = ARRAY(SELECT v FROM unnest(%[1]s) WITH ORDINALITY AS t(v, n) WHERE NOT (v = ANY($1)) ORDER BY n)
		WHERE %[1]s && $1::text[]
	`, col)

	_, err = r.db.ExecContext(ctx, query, pq.Array(ids))
	return wrapErr(err, "remove "+col+" everywhere")
}

func (r *userRepository) AdjustLikes(ctx context.Context, userID string, delta int) (int, error) {
	var likes int
	err := sqlx.GetContext(ctx, r.db, &likes,
		`UPDATE users SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`, userID, delta)
	if err != nil {
		return 0, wrapErr(err, "adjust user likes")
	}
	return likes, nil
}

// ListPreviews keeps the order of ids and skips ids with no user.
func (r *userRepository) ListPreviews(ctx context.Context, ids []string) ([]models.UserPreview, error) {
	previews := []models.UserPreview{}
	if len(ids) == 0 {
		return previews, nil
	}

	query := `
		SELECT id, username, avatar_url FROM users
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)
	`

	if err := sqlx.SelectContext(ctx, r.db, &previews, query, pq.Array(ids)); err != nil {
		return nil, wrapErr(err, "list user previews")
	}
	return previews, nil
}

func (r *userRepository) PassedTests(ctx context.Context, userID string) ([]models.PassedTest, error) {
	passed := []models.PassedTest{}

	query := `SELECT user_id, test_id, score, passed_at FROM passed_tests WHERE user_id = $1 ORDER BY passed_at`

	if err := sqlx.SelectContext(ctx, r.db, &passed, query, userID); err != nil {
		return nil, wrapErr(err, "list passed tests")
	}
	return passed, nil
}

// RecordPassedTest keeps one row per user and test; the latest score wins.
func (r *userRepository) RecordPassedTest(ctx context.Context, passed *models.PassedTest) error {
	if passed.PassedAt.IsZero() {
		passed.PassedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO passed_tests (user_id, test_id, score, passed_at)
		VALUES (:user_id, :test_id, :score, :passed_at)
		ON CONFLICT (user_id, test_id) DO UPDATE SET score = EXCLUDED.score, passed_at = EXCLUDED.passed_at
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, passed)
	return wrapErr(err, "record passed test")
}
