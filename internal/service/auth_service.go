package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizbook/internal/apperror"
	"quizbook/internal/mail"
	"quizbook/internal/models"
	"quizbook/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	VerifyEmail(ctx context.Context, code string) error
	NewVerificationCode(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	repo       *repository.Repository
	tokens     TokenService
	mailer     mail.Mailer
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo *repository.Repository, tokens TokenService, mailer mail.Mailer, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		repo:       repo,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: bcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err, "could not check email")
	}

	if _, err := s.repo.User.GetByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("User with this username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err, "could not check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err, "could not hash password")
	}

	user := &models.User{
		Username:        username,
		Email:           email,
		PasswordHash:    string(hash),
		ActivationCode:  uuid.New().String(),
		ShowLikedPosts:  true,
		ShowPassedTests: true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if strings.Contains(err.Error(), "username") {
				return nil, apperror.Conflict("User with this username already exists")
			}
			return nil, apperror.Conflict("User with this email already exists")
		}
		return nil, apperror.Internal(err, "could not create user")
	}

	// registration stands without the mail; a new code can be requested
	if err := s.mailer.SendActivation(ctx, user.Email, user.ActivationCode); err != nil {
		log.Printf("could not send activation email to %s: %v", user.Email, err)
	}

	return user.Public(), nil
}

func (s *authService) VerifyEmail(ctx context.Context, code string) error {
	user, err := s.repo.User.GetByActivationCode(ctx, code)
	if err != nil {
		return lookupErr(err, "Activation code not found")
	}

	if err := s.repo.User.Activate(ctx, user.UserID); err != nil {
		return lookupErr(err, msgUserNotFound)
	}
	return nil
}

func (s *authService) NewVerificationCode(ctx context.Context, userID string) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return lookupErr(err, msgUserNotFound)
	}
	if user.IsActivated {
		return apperror.Conflict("Account already activated")
	}

	code := uuid.New().String()
	if err := s.repo.User.SetActivationCode(ctx, userID, code); err != nil {
		return lookupErr(err, msgUserNotFound)
	}

	if err := s.mailer.SendActivation(ctx, user.Email, code); err != nil {
		return apperror.Internal(err, "could not send activation email")
	}
	return nil
}

// Login answers an unknown e-mail and a wrong password with the same error,
// and compares against a throwaway hash when the user is missing.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Internal(err, "could not load user")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	access, err := s.tokens.IssueAccess(user.UserID, user.Email)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(ctx, user.UserID, user.Email)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperror.Unauthorized("Not authorized")
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("Not authorized")
	}
	return s.tokens.Rotate(ctx, refreshToken)
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), s.bcryptCost)
		if err != nil {
			log.Printf("could not build dummy hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
