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

// TransferCommander defines the write-side operations used by TransferHandler.
type TransferCommander interface {
	CreateTransfer(ctx context.Context, cmd cqrs.CreateTransferCommand) (*models.Transfer, error)
}

// TransferQuerier defines the read-side operations used by TransferHandler.
type TransferQuerier interface {
	ListTransfers(ctx context.Context, q cqrs.ListTransfersQuery) ([]models.TransferView, error)
	GetTransfer(ctx context.Context, transferID, requestingUserID string) (*models.TransferView, error)
}

type TransferHandler struct {
	commands TransferCommander
	queries  TransferQuerier
}

type CreateTransferRequest struct {
	FromAccountNumber string       `json:"fromAccountNumber" validate:"required"`
	ToAccountNumber   string       `json:"toAccountNumber" validate:"required,nefield=FromAccountNumber"`
	Amount            models.Money `json:"amount" validate:"required,gt=0"`
	Description       string       `json:"description" validate:"max=255"`
}

type ListTransfersResponse struct {
	Transfers []models.TransferView `json:"transfers"`
}

func NewTransferHandler(commands TransferCommander, queries TransferQuerier) *TransferHandler {
	return &TransferHandler{commands: commands, queries: queries}
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if !utils.ValidateAccountNumber(req.FromAccountNumber) || !utils.ValidateAccountNumber(req.ToAccountNumber) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number format")
		return
	}

	transfer, err := h.commands.CreateTransfer(c.Request.Context(), cqrs.CreateTransferCommand{
		UserID:            userID,
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            req.Amount,
		Description:       req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrSourceAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Source account not found")
		case errors.Is(err, apperr.ErrDestinationAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Destination account not found")
		case errors.Is(err, apperr.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only transfer from your own accounts")
		case errors.Is(err, apperr.ErrInsufficientFunds):
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
		case errors.Is(err, apperr.ErrSelfTransfer):
			middleware.RespondWithError(c, http.StatusBadRequest, "Source and destination accounts must differ")
		case errors.Is(err, apperr.ErrInvalidAmount):
			middleware.RespondWithError(c, http.StatusBadRequest, "Amount must be greater than zero")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create transfer")
		}
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

func (h *TransferHandler) ListTransfers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	views, err := h.queries.ListTransfers(c.Request.Context(), cqrs.ListTransfersQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transfers")
		return
	}

	if views == nil {
		views = []models.TransferView{}
	}
	c.JSON(http.StatusOK, ListTransfersResponse{Transfers: views})
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	transferID := c.Param("transferId")
	userID, _ := middleware.GetUserID(c)

	if !utils.ValidateTransferID(transferID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transfer ID format")
		return
	}

	view, err := h.queries.GetTransfer(c.Request.Context(), transferID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrTransferNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Transfer not found")
		case errors.Is(err, apperr.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view your own transfers")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get transfer")
		}
		return
	}

	c.JSON(http.StatusOK, view)
}
