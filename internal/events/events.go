// Package events defines the domain events published to Redis Streams after
// state changes commit, plus the publisher/subscriber plumbing.
package events

import (
	"time"

	"github.com/lumenbank/transfer-api/internal/models"
)

// Event types
const (
	UserRegistered    = "user.registered"
	TransferCompleted = "transfer.completed"
	BalanceUpdated    = "balance.updated"
)

// Stream names
const (
	UserEventsStream     = "user.events"
	TransferEventsStream = "transfer.events"
)

// Event is the envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
}

type TransferCompletedEvent struct {
	TransferID        string       `json:"transferId"`
	FromAccountNumber string       `json:"fromAccountNumber"`
	ToAccountNumber   string       `json:"toAccountNumber"`
	FromUserID        string       `json:"fromUserId"`
	ToUserID          string       `json:"toUserId"`
	Amount            models.Money `json:"amount"`
	Currency          string       `json:"currency"`
}

type BalanceUpdatedEvent struct {
	AccountNumber string       `json:"accountNumber"`
	NewBalance    models.Money `json:"newBalance"`
	Change        models.Money `json:"change"`
}
