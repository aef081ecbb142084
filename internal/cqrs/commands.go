package cqrs

import "github.com/lumenbank/transfer-api/internal/models"

type RegisterUserCommand struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Country     string
}

// CreateTransferCommand carries everything the transfer write path needs,
// including the caller identity: ownership of the source account is checked
// against UserID, never against ambient request state.
type CreateTransferCommand struct {
	UserID            string
	FromAccountNumber string
	ToAccountNumber   string
	Amount            models.Money
	Description       string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
