package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"quizbook/internal/models"
	"quizbook/internal/repository"
)

type mockUserRepo struct{ mock.Mock }

func userOrNil(args mock.Arguments) (*models.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return userOrNil(m.Called(ctx, userID))
}
func (m *mockUserRepo) LockByID(ctx context.Context, userID string) (*models.User, error) {
	return userOrNil(m.Called(ctx, userID))
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return userOrNil(m.Called(ctx, email))
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return userOrNil(m.Called(ctx, username))
}
func (m *mockUserRepo) GetByActivationCode(ctx context.Context, code string) (*models.User, error) {
	return userOrNil(m.Called(ctx, code))
}
func (m *mockUserRepo) Activate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockUserRepo) SetActivationCode(ctx context.Context, userID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	return m.Called(ctx, userID, avatarURL).Error(0)
}
func (m *mockUserRepo) AddRef(ctx context.Context, userID string, ref repository.UserRef, id string) (bool, error) {
	args := m.Called(ctx, userID, ref, id)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserRepo) RemoveRef(ctx context.Context, userID string, ref repository.UserRef, id string) (bool, error) {
	args := m.Called(ctx, userID, ref, id)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserRepo) RemoveRefEverywhere(ctx context.Context, ref repository.UserRef, ids ...string) error {
	return m.Called(ctx, ref, ids).Error(0)
}
func (m *mockUserRepo) AdjustLikes(ctx context.Context, userID string, delta int) (int, error) {
	args := m.Called(ctx, userID, delta)
	return args.Int(0), args.Error(1)
}
func (m *mockUserRepo) ListPreviews(ctx context.Context, ids []string) ([]models.UserPreview, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.UserPreview), args.Error(1)
}
func (m *mockUserRepo) PassedTests(ctx context.Context, userID string) ([]models.PassedTest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.PassedTest), args.Error(1)
}
func (m *mockUserRepo) RecordPassedTest(ctx context.Context, passed *models.PassedTest) error {
	return m.Called(ctx, passed).Error(0)
}

type mockTestRepo struct{ mock.Mock }

func testOrNil(args mock.Arguments) (*models.Test, error) {
	if t := args.Get(0); t != nil {
		return t.(*models.Test), args.Error(1)
	}
	return nil, args.Error(1)
}

func viewsOf(args mock.Arguments) ([]models.TestView, error) {
	if v := args.Get(0); v != nil {
		return v.([]models.TestView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTestRepo) Create(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}
func (m *mockTestRepo) GetByID(ctx context.Context, testID string) (*models.Test, error) {
	return testOrNil(m.Called(ctx, testID))
}
func (m *mockTestRepo) LockByID(ctx context.Context, testID string) (*models.Test, error) {
	return testOrNil(m.Called(ctx, testID))
}
func (m *mockTestRepo) Update(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}
func (m *mockTestRepo) Delete(ctx context.Context, testID string) error {
	return m.Called(ctx, testID).Error(0)
}
func (m *mockTestRepo) SetImage(ctx context.Context, testID, imageURL string) error {
	return m.Called(ctx, testID, imageURL).Error(0)
}
func (m *mockTestRepo) GetView(ctx context.Context, testID string) (*models.TestView, error) {
	args := m.Called(ctx, testID)
	if v := args.Get(0); v != nil {
		return v.(*models.TestView), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTestRepo) ListViews(ctx context.Context, ids []string) ([]models.TestView, error) {
	return viewsOf(m.Called(ctx, ids))
}
func (m *mockTestRepo) ListLatest(ctx context.Context, limit int) ([]models.TestView, error) {
	return viewsOf(m.Called(ctx, limit))
}
func (m *mockTestRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.TestView, error) {
	return viewsOf(m.Called(ctx, authorID))
}
func (m *mockTestRepo) Search(ctx context.Context, query string, limit int) ([]models.TestView, error) {
	return viewsOf(m.Called(ctx, query, limit))
}
func (m *mockTestRepo) Page(ctx context.Context, limit, offset int) ([]models.TestView, error) {
	return viewsOf(m.Called(ctx, limit, offset))
}
func (m *mockTestRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockTestRepo) AddRef(ctx context.Context, testID string, ref repository.TestRef, id string) (bool, error) {
	args := m.Called(ctx, testID, ref, id)
	return args.Bool(0), args.Error(1)
}
func (m *mockTestRepo) RemoveRef(ctx context.Context, testID string, ref repository.TestRef, ids ...string) error {
	return m.Called(ctx, testID, ref, ids).Error(0)
}
func (m *mockTestRepo) AdjustLikes(ctx context.Context, testID string, delta int) (int, error) {
	args := m.Called(ctx, testID, delta)
	return args.Int(0), args.Error(1)
}
func (m *mockTestRepo) AdjustSaves(ctx context.Context, testID string, delta int) (int, error) {
	args := m.Called(ctx, testID, delta)
	return args.Int(0), args.Error(1)
}

type mockCommentRepo struct{ mock.Mock }

func commentOrNil(args mock.Arguments) (*models.Comment, error) {
	if c := args.Get(0); c != nil {
		return c.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}
func (m *mockCommentRepo) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	return commentOrNil(m.Called(ctx, commentID))
}
func (m *mockCommentRepo) LockByID(ctx context.Context, commentID string) (*models.Comment, error) {
	return commentOrNil(m.Called(ctx, commentID))
}
func (m *mockCommentRepo) UpdateBody(ctx context.Context, commentID, body string) error {
	return m.Called(ctx, commentID, body).Error(0)
}
func (m *mockCommentRepo) Delete(ctx context.Context, commentID string) error {
	return m.Called(ctx, commentID).Error(0)
}
func (m *mockCommentRepo) GetView(ctx context.Context, commentID string) (*models.CommentView, error) {
	args := m.Called(ctx, commentID)
	if v := args.Get(0); v != nil {
		return v.(*models.CommentView), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCommentRepo) ListViewsByTest(ctx context.Context, testID string) ([]models.CommentView, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).([]models.CommentView), args.Error(1)
}
func (m *mockCommentRepo) LockByTest(ctx context.Context, testID string) ([]models.Comment, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).([]models.Comment), args.Error(1)
}
func (m *mockCommentRepo) AddAnswer(ctx context.Context, commentID, answerID string) (bool, error) {
	args := m.Called(ctx, commentID, answerID)
	return args.Bool(0), args.Error(1)
}
func (m *mockCommentRepo) RemoveAnswer(ctx context.Context, commentID, answerID string) error {
	return m.Called(ctx, commentID, answerID).Error(0)
}
func (m *mockCommentRepo) AdjustLikes(ctx context.Context, commentID string, delta int) (int, error) {
	args := m.Called(ctx, commentID, delta)
	return args.Int(0), args.Error(1)
}

type mockAnswerRepo struct{ mock.Mock }

func answerOrNil(args mock.Arguments) (*models.Answer, error) {
	if a := args.Get(0); a != nil {
		return a.(*models.Answer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	return m.Called(ctx, answer).Error(0)
}
func (m *mockAnswerRepo) GetByID(ctx context.Context, answerID string) (*models.Answer, error) {
	return answerOrNil(m.Called(ctx, answerID))
}
func (m *mockAnswerRepo) LockByID(ctx context.Context, answerID string) (*models.Answer, error) {
	return answerOrNil(m.Called(ctx, answerID))
}
func (m *mockAnswerRepo) UpdateBody(ctx context.Context, answerID, body string) error {
	return m.Called(ctx, answerID, body).Error(0)
}
func (m *mockAnswerRepo) Delete(ctx context.Context, answerID string) error {
	return m.Called(ctx, answerID).Error(0)
}
func (m *mockAnswerRepo) DeleteByComment(ctx context.Context, commentID string) (int64, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockAnswerRepo) GetView(ctx context.Context, answerID string) (*models.AnswerView, error) {
	args := m.Called(ctx, answerID)
	if v := args.Get(0); v != nil {
		return v.(*models.AnswerView), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAnswerRepo) ListViewsByComment(ctx context.Context, commentID string) ([]models.AnswerView, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).([]models.AnswerView), args.Error(1)
}
func (m *mockAnswerRepo) LockByComment(ctx context.Context, commentID string) ([]models.Answer, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).([]models.Answer), args.Error(1)
}
func (m *mockAnswerRepo) LockByTest(ctx context.Context, testID string) ([]models.Answer, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).([]models.Answer), args.Error(1)
}
func (m *mockAnswerRepo) AdjustLikes(ctx context.Context, answerID string, delta int) (int, error) {
	args := m.Called(ctx, answerID, delta)
	return args.Int(0), args.Error(1)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockTokenRepo) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t := args.Get(0); t != nil {
		return t.(*models.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockTablesRepo struct{ mock.Mock }

func (m *mockTablesRepo) CountTablesDB(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockTablesRepo) Counts(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*models.Stats), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) UploadImage(ctx context.Context, prefix, ownerID, fileName string, file io.Reader, size int64) (string, string, error) {
	args := m.Called(ctx, prefix, ownerID, fileName, file, size)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *mockStorage) DeleteImage(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}
func (m *mockStorage) ObjectName(imageURL string) (string, bool) {
	args := m.Called(imageURL)
	return args.String(0), args.Bool(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendActivation(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

// fakeTx runs fn against the same mocked repositories and records how the
// transaction ended.
type fakeTx struct {
	repo      *repository.Repository
	committed int
	rolled    int
}

func (f *fakeTx) WithTx(ctx context.Context, reason string, fn func(repo *repository.Repository) error) error {
	if err := fn(f.repo); err != nil {
		f.rolled++
		return err
	}
	f.committed++
	return nil
}

type mocks struct {
	users    *mockUserRepo
	tests    *mockTestRepo
	comments *mockCommentRepo
	answers  *mockAnswerRepo
	tokens   *mockTokenRepo
	tables   *mockTablesRepo
	storage  *mockStorage
	mailer   *mockMailer
	repo     *repository.Repository
	tx       *fakeTx
}

func newMocks() *mocks {
	m := &mocks{
		users:    new(mockUserRepo),
		tests:    new(mockTestRepo),
		comments: new(mockCommentRepo),
		answers:  new(mockAnswerRepo),
		tokens:   new(mockTokenRepo),
		tables:   new(mockTablesRepo),
		storage:  new(mockStorage),
		mailer:   new(mockMailer),
	}
	m.repo = &repository.Repository{
		User:    m.users,
		Test:    m.tests,
		Comment: m.comments,
		Answer:  m.answers,
		Token:   m.tokens,
		Tables:  m.tables,
	}
	m.tx = &fakeTx{repo: m.repo}
	return m
}

func (m *mocks) assertExpectations(t mock.TestingT) {
	m.users.AssertExpectations(t)
	m.tests.AssertExpectations(t)
	m.comments.AssertExpectations(t)
	m.answers.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.tables.AssertExpectations(t)
	m.storage.AssertExpectations(t)
	m.mailer.AssertExpectations(t)
}
