package service

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"

	"quizbook/internal/apperror"
	"quizbook/internal/models"
	"quizbook/internal/repository"
	"quizbook/internal/storage"
)

type UpdateUserInput struct {
	Username        string `json:"username" validate:"required,min=3,max=32"`
	Bio             string `json:"bio" validate:"max=500"`
	ShowLikedPosts  bool   `json:"showLikedPosts"`
	ShowPassedTests bool   `json:"showPassedTests"`
}

type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	Follow(ctx context.Context, userID, subscriberID string) error
	Unfollow(ctx context.Context, userID, subscriberID string) error
	UpdateUser(ctx context.Context, userID string, input UpdateUserInput) error
	SetAvatar(ctx context.Context, userID, avatarURL string) error
	UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error)
	GetUserPage(ctx context.Context, userID string) (*models.UserPage, error)
	GetLikedPosts(ctx context.Context, userID string) ([]models.TestView, error)
	GetSavedPosts(ctx context.Context, userID string) ([]models.TestView, error)
	GetFollowers(ctx context.Context, userID string) ([]models.UserPreview, error)
	GetFollowings(ctx context.Context, userID string) ([]models.UserPreview, error)
	GetPassedTests(ctx context.Context, userID string) ([]models.PassedTestView, error)
}

type userService struct {
	repo    *repository.Repository
	tx      repository.Transactor
	storage storage.Storage
}

func NewUserService(repo *repository.Repository, tx repository.Transactor, storage storage.Storage) UserService {
	return &userService{
		repo:    repo,
		tx:      tx,
		storage: storage,
	}
}

func (s *userService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	passed, err := s.repo.User.PassedTests(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load passed tests")
	}
	user.PassedTests = passed

	return user.Public(), nil
}

// lockUsers locks the given users in ascending id order. Missing users are
// absent from the result.
func lockUsers(ctx context.Context, users repository.UserRepository, ids ...string) (map[string]*models.User, error) {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	locked := make(map[string]*models.User, len(ordered))
	for _, id := range ordered {
		user, err := users.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, apperror.Internal(err, "could not lock user")
		}
		locked[id] = user
	}
	return locked, nil
}

// lockPair locks the followed user and the subscriber in ascending id order.
func lockPair(ctx context.Context, users repository.UserRepository, userID, subscriberID string) (*models.User, *models.User, error) {
	if userID == subscriberID {
		user, err := users.LockByID(ctx, userID)
		if err != nil {
			return nil, nil, lookupErr(err, msgUserNotFound)
		}
		return user, user, nil
	}

	locked, err := lockUsers(ctx, users, userID, subscriberID)
	if err != nil {
		return nil, nil, err
	}

	if locked[userID] == nil {
		return nil, nil, apperror.NotFound(msgUserNotFound)
	}
	if locked[subscriberID] == nil {
		return nil, nil, apperror.NotFound(msgSubscriberNotFound)
	}
	return locked[userID], locked[subscriberID], nil
}

func (s *userService) Follow(ctx context.Context, userID, subscriberID string) error {
	err := s.tx.WithTx(ctx, "follow user", func(repo *repository.Repository) error {
		user, subscriber, err := lockPair(ctx, repo.User, userID, subscriberID)
		if err != nil {
			return err
		}
		if user.UserID == subscriber.UserID {
			return apperror.Forbidden("You can't follow yourself")
		}
		if subscriber.Followings.Has(user.UserID) {
			return apperror.Conflict("Already following")
		}

		if _, err := repo.User.AddRef(ctx, user.UserID, repository.UserFollowers, subscriber.UserID); err != nil {
			return err
		}
		_, err = repo.User.AddRef(ctx, subscriber.UserID, repository.UserFollowings, user.UserID)
		return err
	})
	return internalErr(err, "could not follow user")
}

func (s *userService) Unfollow(ctx context.Context, userID, subscriberID string) error {
	err := s.tx.WithTx(ctx, "unfollow user", func(repo *repository.Repository) error {
		user, subscriber, err := lockPair(ctx, repo.User, userID, subscriberID)
		if err != nil {
			return err
		}
		if user.UserID == subscriber.UserID {
			return apperror.Forbidden("You can't follow yourself")
		}
		if !subscriber.Followings.Has(user.UserID) {
			return apperror.Conflict("Already unfollowed")
		}

		if _, err := repo.User.RemoveRef(ctx, user.UserID, repository.UserFollowers, subscriber.UserID); err != nil {
			return err
		}
		_, err = repo.User.RemoveRef(ctx, subscriber.UserID, repository.UserFollowings, user.UserID)
		return err
	})
	return internalErr(err, "could not unfollow user")
}

func (s *userService) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) error {
	err := s.tx.WithTx(ctx, "update user", func(repo *repository.Repository) error {
		user, err := repo.User.LockByID(ctx, userID)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		if input.Username != user.Username {
			other, err := repo.User.GetByUsername(ctx, input.Username)
			if err == nil && other.UserID != user.UserID {
				return apperror.Conflict("Username already exists")
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		user.Username = input.Username
		user.Bio = input.Bio
		user.ShowLikedPosts = input.ShowLikedPosts
		user.ShowPassedTests = input.ShowPassedTests

		if err := repo.User.UpdateProfile(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.Conflict("Username already exists")
			}
			return err
		}
		return nil
	})
	return internalErr(err, "could not update user")
}

func (s *userService) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	if err := s.repo.User.SetAvatar(ctx, userID, avatarURL); err != nil {
		return lookupErr(err, msgUserNotFound)
	}
	return nil
}

// UploadAvatar stores the image, points the user at it and drops the
// previous avatar object when this service owns it.
func (s *userService) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}

	objectName, url, err := s.storage.UploadImage(ctx, "avatars", userID, fileName, file, size)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return "", apperror.BadRequest("Unsupported image type")
		}
		return "", apperror.Internal(err, "could not upload avatar")
	}

	if err := s.SetAvatar(ctx, userID, url); err != nil {
		if delErr := s.storage.DeleteImage(ctx, objectName); delErr != nil {
			log.Printf("could not delete orphaned avatar %s: %v", objectName, delErr)
		}
		return "", err
	}

	if previous, ok := s.storage.ObjectName(user.AvatarURL); ok {
		if err := s.storage.DeleteImage(ctx, previous); err != nil {
			log.Printf("could not delete previous avatar %s: %v", previous, err)
		}
	}

	return url, nil
}

func (s *userService) GetUserPage(ctx context.Context, userID string) (*models.UserPage, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Test.ListViews(ctx, user.CreatedTests)
	if err != nil {
		return nil, apperror.Internal(err, "could not load created tests")
	}

	passed, err := s.repo.User.PassedTests(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load passed tests")
	}
	user.PassedTests = passed

	return &models.UserPage{User: user.Public(), CreatedTests: withoutAnswers(created)}, nil
}

func (s *userService) testList(ctx context.Context, userID string, pick func(*models.User) models.IDs) ([]models.TestView, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views, err := s.repo.Test.ListViews(ctx, pick(user))
	if err != nil {
		return nil, apperror.Internal(err, "could not load tests")
	}
	return withoutAnswers(views), nil
}

func (s *userService) GetLikedPosts(ctx context.Context, userID string) ([]models.TestView, error) {
	return s.testList(ctx, userID, func(u *models.User) models.IDs { return u.LikedPosts })
}

func (s *userService) GetSavedPosts(ctx context.Context, userID string) ([]models.TestView, error) {
	return s.testList(ctx, userID, func(u *models.User) models.IDs { return u.SavedPosts })
}

func (s *userService) userList(ctx context.Context, userID string, pick func(*models.User) models.IDs) ([]models.UserPreview, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	previews, err := s.repo.User.ListPreviews(ctx, pick(user))
	if err != nil {
		return nil, apperror.Internal(err, "could not load users")
	}
	return previews, nil
}

func (s *userService) GetFollowers(ctx context.Context, userID string) ([]models.UserPreview, error) {
	return s.userList(ctx, userID, func(u *models.User) models.IDs { return u.Followers })
}

func (s *userService) GetFollowings(ctx context.Context, userID string) ([]models.UserPreview, error) {
	return s.userList(ctx, userID, func(u *models.User) models.IDs { return u.Followings })
}

// GetPassedTests fails as a whole if any passed test no longer resolves.
func (s *userService) GetPassedTests(ctx context.Context, userID string) ([]models.PassedTestView, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	passed, err := s.repo.User.PassedTests(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load passed tests")
	}

	ids := make([]string, len(passed))
	for i, p := range passed {
		ids[i] = p.TestID
	}

	views, err := s.repo.Test.ListViews(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err, "could not load tests")
	}

	byID := make(map[string]models.TestView, len(views))
	for _, v := range withoutAnswers(views) {
		byID[v.TestID] = v
	}

	result := make([]models.PassedTestView, 0, len(passed))
	for _, p := range passed {
		view, ok := byID[p.TestID]
		if !ok {
			return nil, apperror.NotFound(msgTestNotFound)
		}
		result = append(result, models.PassedTestView{TestView: view, FinalResult: p.Score})
	}

	return result, nil
}
