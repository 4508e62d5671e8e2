package test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"quizbook/internal/models"
	"quizbook/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockAuthService) NewVerificationCode(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Follow(ctx context.Context, userID, subscriberID string) error {
	return m.Called(ctx, userID, subscriberID).Error(0)
}

func (m *MockUserService) Unfollow(ctx context.Context, userID, subscriberID string) error {
	return m.Called(ctx, userID, subscriberID).Error(0)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, input service.UpdateUserInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

func (m *MockUserService) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	return m.Called(ctx, userID, avatarURL).Error(0)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error) {
	args := m.Called(ctx, userID, fileName, file, size)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) GetUserPage(ctx context.Context, userID string) (*models.UserPage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPage), args.Error(1)
}

func (m *MockUserService) GetLikedPosts(ctx context.Context, userID string) ([]models.TestView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestView), args.Error(1)
}

func (m *MockUserService) GetSavedPosts(ctx context.Context, userID string) ([]models.TestView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestView), args.Error(1)
}

func (m *MockUserService) GetFollowers(ctx context.Context, userID string) ([]models.UserPreview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserPreview), args.Error(1)
}

func (m *MockUserService) GetFollowings(ctx context.Context, userID string) ([]models.UserPreview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserPreview), args.Error(1)
}

func (m *MockUserService) GetPassedTests(ctx context.Context, userID string) ([]models.PassedTestView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PassedTestView), args.Error(1)
}

type MockTestService struct {
	mock.Mock
}

func testViewOrNil(args mock.Arguments) (*models.TestView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestView), args.Error(1)
}

func testViewsOrNil(args mock.Arguments) ([]models.TestView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestView), args.Error(1)
}

func (m *MockTestService) CreateTest(ctx context.Context, authorID string, input service.TestInput) (*models.TestView, error) {
	return testViewOrNil(m.Called(ctx, authorID, input))
}

func (m *MockTestService) GetTest(ctx context.Context, testID, viewerID string) (*models.TestView, error) {
	return testViewOrNil(m.Called(ctx, testID, viewerID))
}

func (m *MockTestService) UpdateTest(ctx context.Context, testID, userID string, input service.TestInput) (*models.TestView, error) {
	return testViewOrNil(m.Called(ctx, testID, userID, input))
}

func (m *MockTestService) DeleteTest(ctx context.Context, testID, userID string) error {
	return m.Called(ctx, testID, userID).Error(0)
}

func (m *MockTestService) UploadImage(ctx context.Context, testID, userID, fileName string, file io.Reader, size int64) (string, error) {
	args := m.Called(ctx, testID, userID, fileName, file, size)
	return args.String(0), args.Error(1)
}

func (m *MockTestService) GetLatest(ctx context.Context) ([]models.TestView, error) {
	return testViewsOrNil(m.Called(ctx))
}

func (m *MockTestService) GetUserTests(ctx context.Context, authorID string) ([]models.TestView, error) {
	return testViewsOrNil(m.Called(ctx, authorID))
}

func (m *MockTestService) Search(ctx context.Context, query string) ([]models.TestView, error) {
	return testViewsOrNil(m.Called(ctx, query))
}

func (m *MockTestService) Paginate(ctx context.Context, page, limit int) (*models.TestPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestPage), args.Error(1)
}

func (m *MockTestService) Submit(ctx context.Context, userID, testID string, answers []int) (*models.SubmitResult, error) {
	args := m.Called(ctx, userID, testID, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}

func (m *MockTestService) Like(ctx context.Context, testID, userID string) (*models.LikeState, error) {
	args := m.Called(ctx, testID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LikeState), args.Error(1)
}

func (m *MockTestService) Save(ctx context.Context, testID, userID string) (*models.SaveState, error) {
	args := m.Called(ctx, testID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaveState), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func commentViewOrNil(args mock.Arguments) (*models.CommentView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentView), args.Error(1)
}

func answerViewOrNil(args mock.Arguments) (*models.AnswerView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerView), args.Error(1)
}

func likeStateOrNil(args mock.Arguments) (*models.LikeState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LikeState), args.Error(1)
}

func (m *MockCommentService) CreateComment(ctx context.Context, body, userID, testID string) (*models.CommentView, error) {
	return commentViewOrNil(m.Called(ctx, body, userID, testID))
}

func (m *MockCommentService) UpdateComment(ctx context.Context, commentID, testID, userID, body string) (*models.CommentView, error) {
	return commentViewOrNil(m.Called(ctx, commentID, testID, userID, body))
}

func (m *MockCommentService) RemoveComment(ctx context.Context, commentID, userID, testID string) error {
	return m.Called(ctx, commentID, userID, testID).Error(0)
}

func (m *MockCommentService) LikeComment(ctx context.Context, commentID, userID string) (*models.LikeState, error) {
	return likeStateOrNil(m.Called(ctx, commentID, userID))
}

func (m *MockCommentService) GetComments(ctx context.Context, testID string) ([]models.CommentView, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommentView), args.Error(1)
}

func (m *MockCommentService) CreateAnswer(ctx context.Context, body, userID, testID, parentID string) (*models.AnswerView, error) {
	return answerViewOrNil(m.Called(ctx, body, userID, testID, parentID))
}

func (m *MockCommentService) UpdateAnswer(ctx context.Context, answerID, userID, body string) (*models.AnswerView, error) {
	return answerViewOrNil(m.Called(ctx, answerID, userID, body))
}

func (m *MockCommentService) RemoveAnswer(ctx context.Context, parentID, answerID, userID string) error {
	return m.Called(ctx, parentID, answerID, userID).Error(0)
}

func (m *MockCommentService) LikeAnswer(ctx context.Context, answerID, userID string) (*models.LikeState, error) {
	return likeStateOrNil(m.Called(ctx, answerID, userID))
}

func (m *MockCommentService) GetAnswers(ctx context.Context, commentID string) ([]models.AnswerView, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerView), args.Error(1)
}

type MockTablesService struct {
	mock.Mock
}

func (m *MockTablesService) CountTablesDB(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTablesService) Counts(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type MockHealth struct {
	mock.Mock
}

func (m *MockHealth) HealthCheck() error {
	return m.Called().Error(0)
}
