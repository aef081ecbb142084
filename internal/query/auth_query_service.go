package query

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/middleware"
	"github.com/lumenbank/transfer-api/internal/models"
	"github.com/lumenbank/transfer-api/internal/utils"
)

// CredentialStore resolves login credentials from the write store.
type CredentialStore interface {
	GetByEmail(email string) (*models.User, error)
}

// AuthQueryService handles login and token refresh. There is no command
// service for auth because these operations don't mutate application state.
// Every failure collapses into ErrInvalidCredentials so the response never
// reveals whether the email exists.
type AuthQueryService struct {
	userRepo CredentialStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthQueryService(userRepo CredentialStore, secret []byte, tokenTTL time.Duration) *AuthQueryService {
	return &AuthQueryService{userRepo: userRepo, secret: secret, tokenTTL: tokenTTL}
}

// Login verifies credentials and returns a signed token plus the user view
// for the client's session bootstrap.
func (s *AuthQueryService) Login(cmd cqrs.LoginCommand) (string, *models.UserView, error) {
	user, err := s.userRepo.GetByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return "", nil, apperr.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.Active {
		return "", nil, apperr.ErrInvalidCredentials
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", nil, apperr.ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	view := &models.UserView{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Country:     user.Country,
		CreatedAt:   user.CreatedAt,
	}
	return token, view, nil
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (s *AuthQueryService) RefreshToken(cmd cqrs.RefreshTokenCommand) (string, error) {
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(cmd.Token, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.ErrInvalidCredentials
	}
	return s.generateToken(claims.UserID, claims.Email)
}

func (s *AuthQueryService) generateToken(userID, email string) (string, error) {
	claims := middleware.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
