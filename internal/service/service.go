package service

import (
	"errors"

	"quizbook/internal/apperror"
	"quizbook/internal/config"
	"quizbook/internal/mail"
	"quizbook/internal/repository"
	"quizbook/internal/storage"
)

const (
	msgUserNotFound       = "User not found"
	msgSubscriberNotFound = "Subscriber not found"
	msgTestNotFound       = "Test not found"
	msgCommentNotFound    = "Comment not found"
	msgAnswerNotFound     = "Answer not found"
	msgAccessDenied       = "Access denied"
	msgInvalidToken       = "Invalid token"
	msgInvalidCredentials = "Invalid credentials"
)

type Service struct {
	Token   TokenService
	Auth    AuthService
	User    UserService
	Test    TestService
	Comment CommentService
	Tables  TablesService
}

func NewService(repo *repository.Repository, tx repository.Transactor, cfg *config.Config,
	store storage.Storage, mailer mail.Mailer) *Service {
	tokens := NewTokenService(repo, tx, cfg.JWT)

	return &Service{
		Token:   tokens,
		Auth:    NewAuthService(repo, tokens, mailer, cfg.BcryptCost),
		User:    NewUserService(repo, tx, store),
		Test:    NewTestService(repo, tx, store),
		Comment: NewCommentService(repo, tx),
		Tables:  NewTablesService(repo.Tables),
	}
}

// lookupErr reports a repository miss as NotFound with message and anything
// else as an internal failure.
func lookupErr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return apperror.Internal(err, message)
}

// internalErr keeps errors that already carry a kind and wraps the rest.
func internalErr(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err, message)
}
