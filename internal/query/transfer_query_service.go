package query

import (
	"context"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/models"
)

// TransferReader serves transfer projections.
type TransferReader interface {
	GetByID(ctx context.Context, transferID string) (*models.TransferView, error)
	ListByUserID(ctx context.Context, userID string) ([]models.TransferView, error)
	ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.TransferView, error)
}

// TransferQueryService serves transfer history. Account-scoped reads verify
// ownership against the account read model before touching the history.
type TransferQueryService struct {
	readRepo    TransferReader
	accountRepo AccountReader
}

func NewTransferQueryService(readRepo TransferReader, accountRepo AccountReader) *TransferQueryService {
	return &TransferQueryService{readRepo: readRepo, accountRepo: accountRepo}
}

// ListTransfers returns the caller's full history, newest first.
func (s *TransferQueryService) ListTransfers(ctx context.Context, q cqrs.ListTransfersQuery) ([]models.TransferView, error) {
	return s.readRepo.ListByUserID(ctx, q.UserID)
}

// ListAccountTransfers returns the history of one account, newest first.
// The caller must own the account.
func (s *TransferQueryService) ListAccountTransfers(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error) {
	account, err := s.accountRepo.GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != q.RequestingUserID {
		return nil, apperr.ErrForbidden
	}
	return s.readRepo.ListByAccountNumber(ctx, q.AccountNumber)
}

// GetTransfer returns a single transfer. The caller must own the source or
// the destination account.
func (s *TransferQueryService) GetTransfer(ctx context.Context, transferID, requestingUserID string) (*models.TransferView, error) {
	view, err := s.readRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	for _, number := range []string{view.FromAccountNumber, view.ToAccountNumber} {
		account, err := s.accountRepo.GetByAccountNumber(ctx, number)
		if err == nil && account.UserID == requestingUserID {
			return view, nil
		}
	}
	return nil, apperr.ErrForbidden
}
