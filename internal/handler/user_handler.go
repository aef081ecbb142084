package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/middleware"
	"github.com/lumenbank/transfer-api/internal/models"
)

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetProfile(ctx context.Context, userID string) (*models.UserView, int64, error)
}

type UserHandler struct {
	queries UserQuerier
}

type ProfileResponse struct {
	User          *models.UserView `json:"user"`
	TransferCount int64            `json:"transferCount"`
}

func NewUserHandler(queries UserQuerier) *UserHandler {
	return &UserHandler{queries: queries}
}

// GetProfile serves the authenticated caller's own profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, transferCount, err := h.queries.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: view, TransferCount: transferCount})
}
