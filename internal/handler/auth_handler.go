package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/middleware"
	"github.com/lumenbank/transfer-api/internal/models"
)

// UserCommander defines the write-side operations used by AuthHandler.
type UserCommander interface {
	Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error)
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(cmd cqrs.LoginCommand) (string, *models.UserView, error)
	RefreshToken(cmd cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	commands UserCommander
	queries  AuthQuerier
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Country     string `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type RegisterResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  *models.UserView `json:"user"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(commands UserCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, account, err := h.commands.Register(c.Request.Context(), cqrs.RegisterUserCommand{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateEmail) {
			middleware.RespondWithError(c, http.StatusConflict, "Email already in use")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		ID:            user.ID,
		AccountNumber: account.AccountNumber,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, user, err := h.queries.Login(cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(cqrs.RefreshTokenCommand{Token: req.Token})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
