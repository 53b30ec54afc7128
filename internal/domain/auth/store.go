package auth

import (
	"context"

	"worklog/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	UserID       string
	Email        string
	PasswordHash string
	ProfileID    string
	FullName     string
	Role         string
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.email, u.password_hash, p.id, p.full_name, p.role
    FROM users u
    JOIN profiles p ON u.profile_id = p.id
    WHERE u.email = $1
  `, email).Scan(&out.UserID, &out.Email, &out.PasswordHash, &out.ProfileID, &out.FullName, &out.Role)
	return out, err
}
