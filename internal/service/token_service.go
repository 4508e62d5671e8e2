package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quizbook/internal/apperror"
	"quizbook/internal/config"
	"quizbook/internal/models"
	"quizbook/internal/repository"
)

// Claims is the payload of both token kinds.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"-"`
	User         *models.User `json:"user"`
}

type TokenService interface {
	IssueAccess(userID, email string) (string, error)
	IssueRefresh(ctx context.Context, userID, email string) (string, error)
	VerifyAccess(token string) (*Claims, error)
	VerifyRefresh(ctx context.Context, token string) (*Claims, error)
	Rotate(ctx context.Context, token string) (*TokenPair, error)
	Revoke(ctx context.Context, token string) error
	PruneExpired(ctx context.Context) (int64, error)
}

type tokenService struct {
	repo *repository.Repository
	tx   repository.Transactor
	cfg  config.JWT
	now  func() time.Time
}

func NewTokenService(repo *repository.Repository, tx repository.Transactor, cfg config.JWT) TokenService {
	return &tokenService{
		repo: repo,
		tx:   tx,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *tokenService) sign(userID, email, secret string, ttl time.Duration, withID bool) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		ID:    userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if withID {
		claims.RegisteredClaims.ID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *tokenService) parse(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *tokenService) IssueAccess(userID, email string) (string, error) {
	token, _, err := s.sign(userID, email, s.cfg.AccessSecret, s.cfg.AccessTokenDuration, false)
	if err != nil {
		return "", apperror.Internal(err, "could not issue access token")
	}
	return token, nil
}

func (s *tokenService) IssueRefresh(ctx context.Context, userID, email string) (string, error) {
	return s.issueRefresh(ctx, s.repo.Token, userID, email)
}

// issueRefresh signs a refresh token and stores it through tokens, which may
// be bound to a transaction.
func (s *tokenService) issueRefresh(ctx context.Context, tokens repository.TokenRepository, userID, email string) (string, error) {
	token, expiresAt, err := s.sign(userID, email, s.cfg.RefreshSecret, s.cfg.RefreshTokenDuration, true)
	if err != nil {
		return "", apperror.Internal(err, "could not issue refresh token")
	}

	err = tokens.Create(ctx, &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", apperror.Internal(err, "could not store refresh token")
	}

	return token, nil
}

func (s *tokenService) VerifyAccess(token string) (*Claims, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return nil, apperror.Unauthorized(msgInvalidToken)
	}
	return claims, nil
}

func (s *tokenService) VerifyRefresh(ctx context.Context, token string) (*Claims, error) {
	claims, _, err := s.verifyStored(ctx, s.repo.Token, token)
	return claims, err
}

func (s *tokenService) verifyStored(ctx context.Context, tokens repository.TokenRepository, token string) (*Claims, *models.RefreshToken, error) {
	stored, err := tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.Unauthorized(msgInvalidToken)
		}
		return nil, nil, apperror.Internal(err, "could not load refresh token")
	}

	claims, err := s.parse(token, s.cfg.RefreshSecret)
	if err != nil || claims.ID != stored.UserID || !stored.ExpiresAt.After(s.now()) {
		return nil, nil, apperror.Unauthorized(msgInvalidToken)
	}

	return claims, stored, nil
}

// Rotate exchanges a stored refresh token for a new pair. The old record is
// deleted before the new one is written, so a replayed token loses the race.
func (s *tokenService) Rotate(ctx context.Context, token string) (*TokenPair, error) {
	var pair *TokenPair

	err := s.tx.WithTx(ctx, "rotate refresh token", func(repo *repository.Repository) error {
		claims, _, err := s.verifyStored(ctx, repo.Token, token)
		if err != nil {
			return err
		}

		if err := repo.Token.DeleteByToken(ctx, token); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.Unauthorized(msgInvalidToken)
			}
			return apperror.Internal(err, "could not delete refresh token")
		}

		user, err := repo.User.GetByID(ctx, claims.ID)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		access, err := s.IssueAccess(user.UserID, user.Email)
		if err != nil {
			return err
		}

		refresh, err := s.issueRefresh(ctx, repo.Token, user.UserID, user.Email)
		if err != nil {
			return err
		}

		pair = &TokenPair{AccessToken: access, RefreshToken: refresh, User: user.Public()}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not rotate refresh token")
	}

	return pair, nil
}

func (s *tokenService) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Token.DeleteByToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized(msgInvalidToken)
		}
		return apperror.Internal(err, "could not revoke refresh token")
	}
	return nil
}

func (s *tokenService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.Token.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, apperror.Internal(err, "could not prune refresh tokens")
	}
	return n, nil
}
