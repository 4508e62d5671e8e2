package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"quizbook/internal/models"
)

// UserRef names a reference set column on users.
type UserRef string

const (
	UserFollowers     UserRef = "followers"
	UserFollowings    UserRef = "followings"
	UserLikedPosts    UserRef = "liked_posts"
	UserSavedPosts    UserRef = "saved_posts"
	UserLikedComments UserRef = "liked_comments"
	UserLikedAnswers  UserRef = "liked_answers"
	UserCreatedTests  UserRef = "created_tests"
	UserComments      UserRef = "comments"
	UserAnswers       UserRef = "answers"
)

// TestRef names a reference set column on tests.
type TestRef string

const (
	TestComments       TestRef = "comments"
	TestCommentAnswers TestRef = "comment_answers"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	LockByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByActivationCode(ctx context.Context, code string) (*models.User, error)
	Activate(ctx context.Context, userID string) error
	SetActivationCode(ctx context.Context, userID, code string) error
	UpdateProfile(ctx context.Context, user *models.User) error
	SetAvatar(ctx context.Context, userID, avatarURL string) error
	AddRef(ctx context.Context, userID string, ref UserRef, id string) (bool, error)
	RemoveRef(ctx context.Context, userID string, ref UserRef, id string) (bool, error)
	RemoveRefEverywhere(ctx context.Context, ref UserRef, ids ...string) error
	AdjustLikes(ctx context.Context, userID string, delta int) (int, error)
	ListPreviews(ctx context.Context, ids []string) ([]models.UserPreview, error)
	PassedTests(ctx context.Context, userID string) ([]models.PassedTest, error)
	RecordPassedTest(ctx context.Context, passed *models.PassedTest) error
}

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, testID string) (*models.Test, error)
	LockByID(ctx context.Context, testID string) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, testID string) error
	SetImage(ctx context.Context, testID, imageURL string) error
	GetView(ctx context.Context, testID string) (*models.TestView, error)
	ListViews(ctx context.Context, ids []string) ([]models.TestView, error)
	ListLatest(ctx context.Context, limit int) ([]models.TestView, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.TestView, error)
	Search(ctx context.Context, query string, limit int) ([]models.TestView, error)
	Page(ctx context.Context, limit, offset int) ([]models.TestView, error)
	Count(ctx context.Context) (int, error)
	AddRef(ctx context.Context, testID string, ref TestRef, id string) (bool, error)
	RemoveRef(ctx context.Context, testID string, ref TestRef, ids ...string) error
	AdjustLikes(ctx context.Context, testID string, delta int) (int, error)
	AdjustSaves(ctx context.Context, testID string, delta int) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	LockByID(ctx context.Context, commentID string) (*models.Comment, error)
	UpdateBody(ctx context.Context, commentID, body string) error
	Delete(ctx context.Context, commentID string) error
	GetView(ctx context.Context, commentID string) (*models.CommentView, error)
	ListViewsByTest(ctx context.Context, testID string) ([]models.CommentView, error)
	LockByTest(ctx context.Context, testID string) ([]models.Comment, error)
	AddAnswer(ctx context.Context, commentID, answerID string) (bool, error)
	RemoveAnswer(ctx context.Context, commentID, answerID string) error
	AdjustLikes(ctx context.Context, commentID string, delta int) (int, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, answerID string) (*models.Answer, error)
	LockByID(ctx context.Context, answerID string) (*models.Answer, error)
	UpdateBody(ctx context.Context, answerID, body string) error
	Delete(ctx context.Context, answerID string) error
	DeleteByComment(ctx context.Context, commentID string) (int64, error)
	GetView(ctx context.Context, answerID string) (*models.AnswerView, error)
	ListViewsByComment(ctx context.Context, commentID string) ([]models.AnswerView, error)
	LockByComment(ctx context.Context, commentID string) ([]models.Answer, error)
	LockByTest(ctx context.Context, testID string) ([]models.Answer, error)
	AdjustLikes(ctx context.Context, answerID string, delta int) (int, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
	Counts(ctx context.Context) (*models.Stats, error)
}

// Repository groups the repositories bound to one executor, either the pool
// or a transaction.
type Repository struct {
	User    UserRepository
	Test    TestRepository
	Comment CommentRepository
	Answer  AnswerRepository
	Token   TokenRepository
	Tables  TablesRepository
}

func New(db sqlx.ExtContext) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Test:    NewTestRepository(db),
		Comment: NewCommentRepository(db),
		Answer:  NewAnswerRepository(db),
		Token:   NewTokenRepository(db),
		Tables:  NewTablesRepository(db),
	}
}

// Transactor runs fn against repositories bound to a single transaction.
type Transactor interface {
	WithTx(ctx context.Context, reason string, fn func(repo *Repository) error) error
}
