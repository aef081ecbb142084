package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/events"
	"github.com/lumenbank/transfer-api/internal/models"
	"github.com/lumenbank/transfer-api/internal/utils"
)

// UserStore is the write-side contract for registration. The implementation
// must create the user and the seeded account atomically.
type UserStore interface {
	CreateWithDefaultAccount(user *models.User, account *models.Account) error
}

// UserViewCacher keeps the user read model and activity counters current.
type UserViewCacher interface {
	CacheUserView(ctx context.Context, view *models.UserView)
	IncrTransferCount(ctx context.Context, userID string)
	IsTransferProcessed(ctx context.Context, transferID string) bool
	MarkTransferProcessed(ctx context.Context, transferID string)
}

// UserCommandService registers users. Every new user gets one default account
// seeded with the configured starting balance; the two rows are created in a
// single database transaction.
type UserCommandService struct {
	writeRepo       UserStore
	readRepo        UserViewCacher
	accountViews    AccountViewCacher
	publisher       EventPublisher
	currency        string
	startingBalance models.Money
}

func NewUserCommandService(
	writeRepo UserStore,
	readRepo UserViewCacher,
	accountViews AccountViewCacher,
	publisher EventPublisher,
	currency string,
	startingBalance models.Money,
) *UserCommandService {
	return &UserCommandService{
		writeRepo:       writeRepo,
		readRepo:        readRepo,
		accountViews:    accountViews,
		publisher:       publisher,
		currency:        currency,
		startingBalance: startingBalance,
	}
}

// Register creates the user and their default account. Returns both so the
// handler can echo the new account number.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, *models.Account, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		PhoneNumber:  cmd.PhoneNumber,
		Country:      cmd.Country,
		Role:         models.RoleUser,
		Active:       true,
		CreatedAt:    now,
	}
	account := &models.Account{
		AccountNumber: utils.GenerateAccountNumber(),
		UserID:        user.ID,
		Balance:       s.startingBalance,
		Currency:      s.currency,
		CreatedAt:     now,
	}

	if err := s.writeRepo.CreateWithDefaultAccount(user, account); err != nil {
		return nil, nil, err
	}

	s.readRepo.CacheUserView(ctx, userToView(user))
	s.accountViews.CacheAccountView(ctx, accountToView(account))

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:        user.ID,
		Email:         user.Email,
		AccountNumber: account.AccountNumber,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}

	return user, account, nil
}

// HandleTransferEvent is the Redis stream subscriber handler. It projects
// transfer.completed events into per-user activity counters. Idempotent:
// duplicate delivery of the same transfer ID is detected and skipped.
func (s *UserCommandService) HandleTransferEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.TransferCompleted {
		return nil
	}
	dataBytes, _ := json.Marshal(event.Data)
	var data events.TransferCompletedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal transfer.completed event: %w", err)
	}
	if s.readRepo.IsTransferProcessed(ctx, data.TransferID) {
		log.Printf("Transfer %s already projected, skipping duplicate event", data.TransferID)
		return nil
	}
	s.readRepo.IncrTransferCount(ctx, data.FromUserID)
	if data.ToUserID != data.FromUserID {
		s.readRepo.IncrTransferCount(ctx, data.ToUserID)
	}
	s.readRepo.MarkTransferProcessed(ctx, data.TransferID)
	return nil
}

func userToView(u *models.User) *models.UserView {
	return &models.UserView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Country:     u.Country,
		CreatedAt:   u.CreatedAt,
	}
}
