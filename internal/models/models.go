package models

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferFailed    TransferStatus = "FAILED"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Country      string    `json:"country"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

type Account struct {
	AccountNumber string    `json:"accountNumber"`
	UserID        string    `json:"-"`
	Balance       Money     `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdTimestamp"`
}

type Transfer struct {
	ID                string         `json:"id"`
	FromAccountNumber string         `json:"fromAccountNumber"`
	ToAccountNumber   string         `json:"toAccountNumber"`
	Amount            Money          `json:"amount"`
	Description       string         `json:"description,omitempty"`
	Status            TransferStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdTimestamp"`
}
