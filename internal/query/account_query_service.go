package query

import (
	"context"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/models"
)

// AccountReader serves account projections.
type AccountReader interface {
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.AccountView, error)
	ListByUserID(ctx context.Context, userID string) ([]models.AccountView, error)
}

type AccountQueryService struct {
	readRepo AccountReader
}

func NewAccountQueryService(readRepo AccountReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount fetches a single account view and enforces ownership.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	view, err := s.readRepo.GetByAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	if view.UserID != q.RequestingUserID {
		return nil, apperr.ErrForbidden
	}
	return view, nil
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	return s.readRepo.ListByUserID(ctx, q.UserID)
}
