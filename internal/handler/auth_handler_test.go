package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/models"
)

// ---- mock implementations ----

type mockUserCommander struct {
	registerFn func(context.Context, cqrs.RegisterUserCommand) (*models.User, *models.Account, error)
}

func (m *mockUserCommander) Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, cmd)
	}
	return nil, nil, fmt.Errorf("not configured")
}

type mockAuthQuerier struct {
	loginFn   func(cqrs.LoginCommand) (string, *models.UserView, error)
	refreshFn func(cqrs.RefreshTokenCommand) (string, error)
}

func (m *mockAuthQuerier) Login(cmd cqrs.LoginCommand) (string, *models.UserView, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return "", nil, fmt.Errorf("not configured")
}
func (m *mockAuthQuerier) RefreshToken(cmd cqrs.RefreshTokenCommand) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}

// ---- helpers ----

func newAuthTestRouter(cmds UserCommander, qrys AuthQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(cmds, qrys)
	auth := r.Group("/v1/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.RefreshToken)
	return r
}

// ---- test data ----

var testUser = &models.User{
	ID:        "usr-001",
	Email:     "alice@example.com",
	FirstName: "Alice",
	LastName:  "Martin",
	Role:      models.RoleUser,
	Active:    true,
	CreatedAt: time.Now(),
}

var testAccount = &models.Account{
	AccountNumber: "ACC1111111111",
	UserID:        "usr-001",
	Balance:       100000,
	Currency:      "EUR",
	CreatedAt:     time.Now(),
}

var testUserView = &models.UserView{
	ID:        "usr-001",
	Email:     "alice@example.com",
	FirstName: "Alice",
	LastName:  "Martin",
	CreatedAt: time.Now(),
}

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"email":     "alice@example.com",
		"password":  "s3cretpass",
		"firstName": "Alice",
		"lastName":  "Martin",
		"country":   "FR",
	}
}

// ---- tests ----

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		registerFn     func(context.Context, cqrs.RegisterUserCommand) (*models.User, *models.Account, error)
		expectedStatus int
	}{
		{
			name: "success - user created with seeded account",
			body: registerBody(),
			registerFn: func(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error) {
				return testUser, testAccount, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "conflict - email already registered",
			body: registerBody(),
			registerFn: func(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error) {
				return nil, nil, apperr.ErrDuplicateEmail
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "bad request - invalid email",
			body: map[string]interface{}{
				"email": "not-an-email", "password": "s3cretpass", "firstName": "Alice", "lastName": "Martin",
			},
			registerFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - password too short",
			body: map[string]interface{}{
				"email": "alice@example.com", "password": "abc", "firstName": "Alice", "lastName": "Martin",
			},
			registerFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - missing required fields",
			body:           map[string]interface{}{},
			registerFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockUserCommander{registerFn: tt.registerFn}
			router := newAuthTestRouter(cmds, &mockAuthQuerier{})
			w := doRequest(router, http.MethodPost, "/v1/auth/register", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRegisterHandlerResponse(t *testing.T) {
	cmds := &mockUserCommander{
		registerFn: func(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error) {
			return testUser, testAccount, nil
		},
	}
	router := newAuthTestRouter(cmds, &mockAuthQuerier{})

	w := doRequest(router, http.MethodPost, "/v1/auth/register", registerBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	var resp RegisterResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != "usr-001" || resp.AccountNumber != "ACC1111111111" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(cqrs.LoginCommand) (string, *models.UserView, error)
		expectedStatus int
	}{
		{
			name: "success - valid credentials",
			body: map[string]interface{}{"email": "alice@example.com", "password": "s3cretpass"},
			loginFn: func(cmd cqrs.LoginCommand) (string, *models.UserView, error) {
				return "jwt-token", testUserView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - wrong password",
			body: map[string]interface{}{"email": "alice@example.com", "password": "wrong"},
			loginFn: func(cmd cqrs.LoginCommand) (string, *models.UserView, error) {
				return "", nil, apperr.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unauthorized - unknown email",
			body: map[string]interface{}{"email": "ghost@example.com", "password": "s3cretpass"},
			loginFn: func(cmd cqrs.LoginCommand) (string, *models.UserView, error) {
				return "", nil, apperr.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "bad request - missing password",
			body:           map[string]interface{}{"email": "alice@example.com"},
			loginFn:        nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockUserCommander{}, &mockAuthQuerier{loginFn: tt.loginFn})
			w := doRequest(router, http.MethodPost, "/v1/auth/login", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRefreshTokenHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		refreshFn      func(cqrs.RefreshTokenCommand) (string, error)
		expectedStatus int
	}{
		{
			name: "success - token refreshed",
			body: map[string]interface{}{"token": "old-token"},
			refreshFn: func(cmd cqrs.RefreshTokenCommand) (string, error) {
				return "new-token", nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - expired token",
			body: map[string]interface{}{"token": "expired-token"},
			refreshFn: func(cmd cqrs.RefreshTokenCommand) (string, error) {
				return "", apperr.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "bad request - missing token",
			body:           map[string]interface{}{},
			refreshFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockUserCommander{}, &mockAuthQuerier{refreshFn: tt.refreshFn})
			w := doRequest(router, http.MethodPost, "/v1/auth/refresh", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
