package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{ProfileID: "emp_peyton", Role: RoleEmployee, FullName: "Peyton Cizek"}
	token, err := GenerateToken("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed.ProfileID != "emp_peyton" || parsed.Role != RoleEmployee || parsed.FullName != "Peyton Cizek" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}

	if _, err := ParseToken("wrong-secret", token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Stronger123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := CheckPassword(hash, "Stronger123"); err != nil {
		t.Fatalf("check password: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}

type fakeAuthStore struct {
	users map[string]AuthUser
}

func (f *fakeAuthStore) FindUserByEmail(_ context.Context, email string) (AuthUser, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return AuthUser{}, pgx.ErrNoRows
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("Stronger123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store := &fakeAuthStore{users: map[string]AuthUser{
		"peyton@example.com": {
			UserID:       "user-1",
			Email:        "peyton@example.com",
			PasswordHash: hash,
			ProfileID:    "emp_peyton",
			FullName:     "Peyton Cizek",
			Role:         RoleEmployee,
		},
	}}
	svc := NewService(store, "secret", time.Hour)

	token, user, err := svc.Login(context.Background(), "peyton@example.com", "Stronger123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ProfileID != "emp_peyton" {
		t.Fatalf("unexpected user: %+v", user)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.ProfileID != "emp_peyton" {
		t.Fatalf("unexpected token claims: %+v", claims)
	}

	if _, _, err := svc.Login(context.Background(), "peyton@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "Stronger123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
}
