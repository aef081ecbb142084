package query

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/middleware"
	"github.com/lumenbank/transfer-api/internal/models"
	"github.com/lumenbank/transfer-api/internal/utils"
)

type mockCredentialStore struct {
	users map[string]*models.User
}

func (m *mockCredentialStore) GetByEmail(email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, apperr.ErrUserNotFound
}

func testSecret() []byte { return []byte("test-secret") }

func storeWithUser(t *testing.T, email, password string, active bool) *mockCredentialStore {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &mockCredentialStore{users: map[string]*models.User{
		email: {
			ID:           "usr-001",
			Email:        email,
			PasswordHash: hash,
			FirstName:    "Alice",
			Active:       active,
		},
	}}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		store    func(t *testing.T) *mockCredentialStore
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "success - valid credentials",
			store:    func(t *testing.T) *mockCredentialStore { return storeWithUser(t, "alice@example.com", "s3cretpass", true) },
			email:    "alice@example.com",
			password: "s3cretpass",
		},
		{
			name:     "wrong password",
			store:    func(t *testing.T) *mockCredentialStore { return storeWithUser(t, "alice@example.com", "s3cretpass", true) },
			email:    "alice@example.com",
			password: "wrong",
			wantErr:  apperr.ErrInvalidCredentials,
		},
		{
			name:     "unknown email maps to the same error as wrong password",
			store:    func(t *testing.T) *mockCredentialStore { return &mockCredentialStore{users: map[string]*models.User{}} },
			email:    "ghost@example.com",
			password: "s3cretpass",
			wantErr:  apperr.ErrInvalidCredentials,
		},
		{
			name:     "deactivated user cannot log in",
			store:    func(t *testing.T) *mockCredentialStore { return storeWithUser(t, "alice@example.com", "s3cretpass", false) },
			email:    "alice@example.com",
			password: "s3cretpass",
			wantErr:  apperr.ErrInvalidCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthQueryService(tt.store(t), testSecret(), time.Hour)
			token, view, err := svc.Login(cqrs.LoginCommand{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token == "" {
				t.Error("expected a signed token")
			}
			if view == nil || view.ID != "usr-001" {
				t.Errorf("unexpected user view: %+v", view)
			}
		})
	}
}

func TestLoginTokenClaims(t *testing.T) {
	svc := NewAuthQueryService(storeWithUser(t, "alice@example.com", "s3cretpass", true), testSecret(), time.Hour)

	token, _, err := svc.Login(cqrs.LoginCommand{Email: "alice@example.com", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (any, error) {
		return testSecret(), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != "usr-001" || claims.Email != "alice@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestRefreshToken(t *testing.T) {
	svc := NewAuthQueryService(storeWithUser(t, "alice@example.com", "s3cretpass", true), testSecret(), time.Hour)

	token, _, err := svc.Login(cqrs.LoginCommand{Email: "alice@example.com", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed, err := svc.RefreshToken(cqrs.RefreshTokenCommand{Token: token})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed == "" {
		t.Error("expected a new token")
	}

	if _, err := svc.RefreshToken(cqrs.RefreshTokenCommand{Token: "garbage"}); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for garbage token, got %v", err)
	}

	// Tokens signed with another secret are rejected.
	other := NewAuthQueryService(storeWithUser(t, "alice@example.com", "s3cretpass", true), []byte("other-secret"), time.Hour)
	if _, err := other.RefreshToken(cqrs.RefreshTokenCommand{Token: token}); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for foreign token, got %v", err)
	}
}
