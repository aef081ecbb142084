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
	"github.com/lumenbank/transfer-api/internal/utils"
)

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error)
	ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountTransferQuerier lists the transfer history of one account.
type AccountTransferQuerier interface {
	ListAccountTransfers(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error)
}

type AccountHandler struct {
	queries         AccountQuerier
	transferQueries AccountTransferQuerier
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func NewAccountHandler(queries AccountQuerier, transferQueries AccountTransferQuerier) *AccountHandler {
	return &AccountHandler{queries: queries, transferQueries: transferQueries}
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	if views == nil {
		views = []models.AccountView{}
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	if !utils.ValidateAccountNumber(accountNumber) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number format")
		return
	}

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		AccountNumber:    accountNumber,
		RequestingUserID: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, apperr.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view your own accounts")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get account")
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) ListAccountTransfers(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	userID, _ := middleware.GetUserID(c)

	if !utils.ValidateAccountNumber(accountNumber) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number format")
		return
	}

	views, err := h.transferQueries.ListAccountTransfers(c.Request.Context(), cqrs.ListAccountTransfersQuery{
		AccountNumber:    accountNumber,
		RequestingUserID: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, apperr.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view transfers for your own accounts")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transfers")
		}
		return
	}

	if views == nil {
		views = []models.TransferView{}
	}
	c.JSON(http.StatusOK, ListTransfersResponse{Transfers: views})
}
