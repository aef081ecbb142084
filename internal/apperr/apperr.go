// Package apperr defines the sentinel errors shared by services, repositories
// and handlers. Handlers map these to HTTP status codes with errors.Is instead
// of matching on message strings.
package apperr

import "errors"

var (
	ErrUserNotFound               = errors.New("user not found")
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")
	ErrTransferNotFound           = errors.New("transfer not found")

	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrSelfTransfer       = errors.New("source and destination accounts must differ")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)
