package command

import (
	"context"
	"log"
	"time"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/events"
	"github.com/lumenbank/transfer-api/internal/models"
	"github.com/lumenbank/transfer-api/internal/utils"
)

// LedgerStore is the write-side contract for the atomic transfer. The
// implementation must guarantee that on error no balance changed and no
// transfer row was recorded.
type LedgerStore interface {
	PerformTransfer(ctx context.Context, callerUserID string, transfer *models.Transfer) (from, to *models.Account, err error)
}

// AccountViewCacher refreshes the account read model after a mutation.
type AccountViewCacher interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
}

// TransferViewCacher warms the transfer read model at creation time.
type TransferViewCacher interface {
	CacheTransferView(ctx context.Context, view *models.TransferView)
}

// EventPublisher emits domain events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransferCommandService orchestrates a funds movement: it validates the
// request shape, delegates the atomic debit/credit/record to the ledger
// store, then refreshes read models and publishes events. Cache and event
// failures are logged, never surfaced — the transfer has already committed.
type TransferCommandService struct {
	ledger        LedgerStore
	accountViews  AccountViewCacher
	transferViews TransferViewCacher
	publisher     EventPublisher
}

func NewTransferCommandService(
	ledger LedgerStore,
	accountViews AccountViewCacher,
	transferViews TransferViewCacher,
	publisher EventPublisher,
) *TransferCommandService {
	return &TransferCommandService{
		ledger:        ledger,
		accountViews:  accountViews,
		transferViews: transferViews,
		publisher:     publisher,
	}
}

func (s *TransferCommandService) CreateTransfer(ctx context.Context, cmd cqrs.CreateTransferCommand) (*models.Transfer, error) {
	if cmd.Amount <= 0 {
		return nil, apperr.ErrInvalidAmount
	}
	if cmd.FromAccountNumber == cmd.ToAccountNumber {
		return nil, apperr.ErrSelfTransfer
	}

	transfer := &models.Transfer{
		ID:                utils.GenerateID("trf"),
		FromAccountNumber: cmd.FromAccountNumber,
		ToAccountNumber:   cmd.ToAccountNumber,
		Amount:            cmd.Amount,
		Description:       cmd.Description,
		Status:            models.TransferCompleted,
		CreatedAt:         time.Now().UTC(),
	}

	from, to, err := s.ledger.PerformTransfer(ctx, cmd.UserID, transfer)
	if err != nil {
		return nil, err
	}

	s.accountViews.CacheAccountView(ctx, accountToView(from))
	s.accountViews.CacheAccountView(ctx, accountToView(to))
	s.transferViews.CacheTransferView(ctx, transferToView(transfer))

	if err := s.publisher.Publish(ctx, events.TransferEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		TransferID:        transfer.ID,
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   to.AccountNumber,
		FromUserID:        from.UserID,
		ToUserID:          to.UserID,
		Amount:            transfer.Amount,
		Currency:          from.Currency,
	}); err != nil {
		log.Printf("Failed to publish transfer.completed event: %v", err)
	}
	for _, update := range []struct {
		account *models.Account
		change  models.Money
	}{
		{from, -transfer.Amount},
		{to, transfer.Amount},
	} {
		if err := s.publisher.Publish(ctx, events.TransferEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
			AccountNumber: update.account.AccountNumber,
			NewBalance:    update.account.Balance,
			Change:        update.change,
		}); err != nil {
			log.Printf("Failed to publish balance.updated event: %v", err)
		}
	}

	return transfer, nil
}

// accountToView converts the PostgreSQL write model to the Redis read view model.
func accountToView(a *models.Account) *models.AccountView {
	return &models.AccountView{
		AccountNumber: a.AccountNumber,
		UserID:        a.UserID,
		Balance:       a.Balance,
		Currency:      a.Currency,
		CreatedAt:     a.CreatedAt,
	}
}

// transferToView converts the write model to the read view model.
func transferToView(t *models.Transfer) *models.TransferView {
	return &models.TransferView{
		ID:                t.ID,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		Description:       t.Description,
		Status:            t.Status,
		CreatedAt:         t.CreatedAt,
	}
}
