package models

import "time"

// UserView is the read-optimised projection of a user.
// It never exposes PasswordHash.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"createdTimestamp"`
}

// AccountView is the read-optimised projection of an account.
// UserID is populated for ownership checks but never serialised to the API response.
type AccountView struct {
	AccountNumber string    `json:"accountNumber"`
	UserID        string    `json:"-"`
	Balance       Money     `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdTimestamp"`
}

// TransferView is the read-optimised projection of a transfer.
type TransferView struct {
	ID                string         `json:"id"`
	FromAccountNumber string         `json:"fromAccountNumber"`
	ToAccountNumber   string         `json:"toAccountNumber"`
	Amount            Money          `json:"amount"`
	Description       string         `json:"description,omitempty"`
	Status            TransferStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdTimestamp"`
}
