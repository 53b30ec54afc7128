package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (AuthUser, error)
}

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: tokenTTL}
}

// Login verifies credentials and issues a signed token carrying the
// profile identity. Unknown emails and wrong passwords are reported
// identically.
func (s *Service) Login(ctx context.Context, email, password string) (string, AuthUser, error) {
	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", AuthUser{}, ErrInvalidCredentials
		}
		return "", AuthUser{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", AuthUser{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		ProfileID: user.ProfileID,
		Role:      user.Role,
		FullName:  user.FullName,
	}, s.TokenTTL)
	if err != nil {
		return "", AuthUser{}, err
	}
	return token, user, nil
}
