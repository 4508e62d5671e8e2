package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"quizbook/internal/apperror"
	"quizbook/internal/models"
	"quizbook/internal/repository"
	"quizbook/internal/storage"
)

const (
	latestTestsLimit = 10
	searchLimit      = 50
	defaultPageSize  = 10
	maxPageSize      = 50
)

type TestInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Questions   models.Questions `json:"questions" validate:"required,min=1,dive"`
}

type TestService interface {
	CreateTest(ctx context.Context, authorID string, input TestInput) (*models.TestView, error)
	GetTest(ctx context.Context, testID, viewerID string) (*models.TestView, error)
	UpdateTest(ctx context.Context, testID, userID string, input TestInput) (*models.TestView, error)
	DeleteTest(ctx context.Context, testID, userID string) error
	UploadImage(ctx context.Context, testID, userID, fileName string, file io.Reader, size int64) (string, error)
	GetLatest(ctx context.Context) ([]models.TestView, error)
	GetUserTests(ctx context.Context, authorID string) ([]models.TestView, error)
	Search(ctx context.Context, query string) ([]models.TestView, error)
	Paginate(ctx context.Context, page, limit int) (*models.TestPage, error)
	Submit(ctx context.Context, userID, testID string, answers []int) (*models.SubmitResult, error)
	Like(ctx context.Context, testID, userID string) (*models.LikeState, error)
	Save(ctx context.Context, testID, userID string) (*models.SaveState, error)
}

type testService struct {
	repo    *repository.Repository
	tx      repository.Transactor
	storage storage.Storage
}

func NewTestService(repo *repository.Repository, tx repository.Transactor, storage storage.Storage) TestService {
	return &testService{
		repo:    repo,
		tx:      tx,
		storage: storage,
	}
}

// withoutAnswers hides correct options in views shown to test takers.
func withoutAnswers(views []models.TestView) []models.TestView {
	out := make([]models.TestView, len(views))
	for i, v := range views {
		v.Questions = v.Questions.WithoutAnswers()
		out[i] = v
	}
	return out
}

func validateQuestions(questions models.Questions) error {
	if len(questions) == 0 {
		return apperror.BadRequest("A test needs at least one question")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return apperror.BadRequest(fmt.Sprintf("Question %d has no text", i+1))
		}
		if len(q.Options) < 2 {
			return apperror.BadRequest(fmt.Sprintf("Question %d needs at least two options", i+1))
		}
		if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options) {
			return apperror.BadRequest(fmt.Sprintf("Question %d has no valid correct option", i+1))
		}
	}
	return nil
}

func (s *testService) CreateTest(ctx context.Context, authorID string, input TestInput) (*models.TestView, error) {
	if err := validateQuestions(input.Questions); err != nil {
		return nil, err
	}

	var view *models.TestView
	err := s.tx.WithTx(ctx, "create test", func(repo *repository.Repository) error {
		if _, err := repo.User.LockByID(ctx, authorID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		test := &models.Test{
			AuthorID:    authorID,
			Title:       input.Title,
			Description: input.Description,
			Questions:   input.Questions,
		}
		if err := repo.Test.Create(ctx, test); err != nil {
			return err
		}
		if _, err := repo.User.AddRef(ctx, authorID, repository.UserCreatedTests, test.TestID); err != nil {
			return err
		}

		v, err := repo.Test.GetView(ctx, test.TestID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not create test")
	}

	return view, nil
}

// GetTest shows the correct options to the author only.
func (s *testService) GetTest(ctx context.Context, testID, viewerID string) (*models.TestView, error) {
	view, err := s.repo.Test.GetView(ctx, testID)
	if err != nil {
		return nil, lookupErr(err, msgTestNotFound)
	}
	if viewerID == "" || viewerID != view.AuthorID {
		view.Questions = view.Questions.WithoutAnswers()
	}
	return view, nil
}

func (s *testService) lockOwned(ctx context.Context, repo *repository.Repository, testID, userID string) (*models.Test, error) {
	test, err := repo.Test.LockByID(ctx, testID)
	if err != nil {
		return nil, lookupErr(err, msgTestNotFound)
	}
	if test.AuthorID != userID {
		return nil, apperror.Forbidden(msgAccessDenied)
	}
	return test, nil
}

func (s *testService) UpdateTest(ctx context.Context, testID, userID string, input TestInput) (*models.TestView, error) {
	if err := validateQuestions(input.Questions); err != nil {
		return nil, err
	}

	var view *models.TestView
	err := s.tx.WithTx(ctx, "update test", func(repo *repository.Repository) error {
		test, err := s.lockOwned(ctx, repo, testID, userID)
		if err != nil {
			return err
		}

		test.Title = input.Title
		test.Description = input.Description
		test.Questions = input.Questions
		if err := repo.Test.Update(ctx, test); err != nil {
			return err
		}

		v, err := repo.Test.GetView(ctx, testID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not update test")
	}

	return view, nil
}

// DeleteTest removes the test with its comments and answers and pulls every
// reference to them from users, in one transaction.
func (s *testService) DeleteTest(ctx context.Context, testID, userID string) error {
	var imageURL string

	err := s.tx.WithTx(ctx, "delete test", func(repo *repository.Repository) error {
		test, err := s.lockOwned(ctx, repo, testID, userID)
		if err != nil {
			return err
		}
		imageURL = test.ImageURL

		comments, err := repo.Comment.LockByTest(ctx, testID)
		if err != nil {
			return err
		}
		answers, err := repo.Answer.LockByTest(ctx, testID)
		if err != nil {
			return err
		}

		commentIDs := make([]string, len(comments))
		for i, c := range comments {
			commentIDs[i] = c.CommentID
		}
		answerIDs := make([]string, len(answers))
		for i, a := range answers {
			answerIDs[i] = a.AnswerID
		}

		pulls := []struct {
			ref repository.UserRef
			ids []string
		}{
			{repository.UserLikedAnswers, answerIDs},
			{repository.UserAnswers, answerIDs},
			{repository.UserLikedComments, commentIDs},
			{repository.UserComments, commentIDs},
			{repository.UserLikedPosts, []string{testID}},
			{repository.UserSavedPosts, []string{testID}},
			{repository.UserCreatedTests, []string{testID}},
		}
		for _, p := range pulls {
			if err := repo.User.RemoveRefEverywhere(ctx, p.ref, p.ids...); err != nil {
				return err
			}
		}

		if test.Likes > 0 {
			if _, err := repo.User.AdjustLikes(ctx, test.AuthorID, -test.Likes); err != nil {
				return err
			}
		}

		return repo.Test.Delete(ctx, testID)
	})
	if err != nil {
		return internalErr(err, "could not delete test")
	}

	s.dropImage(ctx, imageURL)
	return nil
}

func (s *testService) dropImage(ctx context.Context, imageURL string) {
	objectName, ok := s.storage.ObjectName(imageURL)
	if !ok {
		return
	}
	if err := s.storage.DeleteImage(ctx, objectName); err != nil {
		log.Printf("could not delete test image %s: %v", objectName, err)
	}
}

func (s *testService) UploadImage(ctx context.Context, testID, userID, fileName string, file io.Reader, size int64) (string, error) {
	test, err := s.repo.Test.GetByID(ctx, testID)
	if err != nil {
		return "", lookupErr(err, msgTestNotFound)
	}
	if test.AuthorID != userID {
		return "", apperror.Forbidden(msgAccessDenied)
	}

	objectName, url, err := s.storage.UploadImage(ctx, "tests", testID, fileName, file, size)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return "", apperror.BadRequest("Unsupported image type")
		}
		return "", apperror.Internal(err, "could not upload test image")
	}

	if err := s.repo.Test.SetImage(ctx, testID, url); err != nil {
		if delErr := s.storage.DeleteImage(ctx, objectName); delErr != nil {
			log.Printf("could not delete orphaned test image %s: %v", objectName, delErr)
		}
		return "", lookupErr(err, msgTestNotFound)
	}

	s.dropImage(ctx, test.ImageURL)
	return url, nil
}

func (s *testService) GetLatest(ctx context.Context) ([]models.TestView, error) {
	views, err := s.repo.Test.ListLatest(ctx, latestTestsLimit)
	if err != nil {
		return nil, apperror.Internal(err, "could not load tests")
	}
	return withoutAnswers(views), nil
}

func (s *testService) GetUserTests(ctx context.Context, authorID string) ([]models.TestView, error) {
	if _, err := s.repo.User.GetByID(ctx, authorID); err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}

	views, err := s.repo.Test.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load tests")
	}
	return withoutAnswers(views), nil
}

func (s *testService) Search(ctx context.Context, query string) ([]models.TestView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest("Search query is required")
	}

	views, err := s.repo.Test.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, apperror.Internal(err, "could not search tests")
	}
	return withoutAnswers(views), nil
}

func (s *testService) Paginate(ctx context.Context, page, limit int) (*models.TestPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total, err := s.repo.Test.Count(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "could not count tests")
	}

	views, err := s.repo.Test.Page(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperror.Internal(err, "could not load tests")
	}

	return &models.TestPage{
		Tests:      withoutAnswers(views),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Submit scores the answers and keeps the latest result per user and test.
func (s *testService) Submit(ctx context.Context, userID, testID string, answers []int) (*models.SubmitResult, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}

	test, err := s.repo.Test.GetByID(ctx, testID)
	if err != nil {
		return nil, lookupErr(err, msgTestNotFound)
	}

	total := len(test.Questions)
	if total == 0 {
		return nil, apperror.BadRequest("Test has no questions")
	}
	if len(answers) != total {
		return nil, apperror.BadRequest(fmt.Sprintf("Expected %d answers, got %d", total, len(answers)))
	}

	correct := 0
	for i, q := range test.Questions {
		if q.CorrectOption != nil && answers[i] == *q.CorrectOption {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(total)))

	err = s.repo.User.RecordPassedTest(ctx, &models.PassedTest{UserID: userID, TestID: testID, Score: score})
	if err != nil {
		return nil, apperror.Internal(err, "could not record result")
	}

	return &models.SubmitResult{TestID: testID, Score: score, Correct: correct, Total: total}, nil
}

// Like toggles the user's like on a test. The author's likes counter moves
// with it.
func (s *testService) Like(ctx context.Context, testID, userID string) (*models.LikeState, error) {
	var state models.LikeState

	err := s.tx.WithTx(ctx, "like test", func(repo *repository.Repository) error {
		test, err := repo.Test.LockByID(ctx, testID)
		if err != nil {
			return lookupErr(err, msgTestNotFound)
		}

		users, err := lockUsers(ctx, repo.User, userID, test.AuthorID)
		if err != nil {
			return err
		}
		user := users[userID]
		if user == nil {
			return apperror.NotFound(msgUserNotFound)
		}

		delta := 1
		if user.LikedPosts.Has(testID) {
			delta = -1
			_, err = repo.User.RemoveRef(ctx, userID, repository.UserLikedPosts, testID)
		} else {
			_, err = repo.User.AddRef(ctx, userID, repository.UserLikedPosts, testID)
		}
		if err != nil {
			return err
		}

		likes, err := repo.Test.AdjustLikes(ctx, testID, delta)
		if err != nil {
			return err
		}
		if users[test.AuthorID] != nil {
			if _, err := repo.User.AdjustLikes(ctx, test.AuthorID, delta); err != nil {
				return err
			}
		}

		state = models.LikeState{Liked: delta > 0, Likes: likes}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not like test")
	}

	return &state, nil
}

func (s *testService) Save(ctx context.Context, testID, userID string) (*models.SaveState, error) {
	var state models.SaveState

	err := s.tx.WithTx(ctx, "save test", func(repo *repository.Repository) error {
		if _, err := repo.Test.LockByID(ctx, testID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}

		user, err := repo.User.LockByID(ctx, userID)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		delta := 1
		if user.SavedPosts.Has(testID) {
			delta = -1
			_, err = repo.User.RemoveRef(ctx, userID, repository.UserSavedPosts, testID)
		} else {
			_, err = repo.User.AddRef(ctx, userID, repository.UserSavedPosts, testID)
		}
		if err != nil {
			return err
		}

		saves, err := repo.Test.AdjustSaves(ctx, testID, delta)
		if err != nil {
			return err
		}

		state = models.SaveState{Saved: delta > 0, Saves: saves}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not save test")
	}

	return &state, nil
}
