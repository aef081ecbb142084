// Package ledger holds the pure balance arithmetic for a funds movement.
// The repository applies these rules inside a database transaction; keeping
// them here lets the invariants be tested without a database.
package ledger

import (
	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/models"
)

// ApplyTransfer debits from and credits to by amount, in memory.
// Balances are only mutated when every check passes; the sum of the two
// balances is identical before and after.
func ApplyTransfer(from, to *models.Account, amount models.Money) error {
	if amount <= 0 {
		return apperr.ErrInvalidAmount
	}
	if from.AccountNumber == to.AccountNumber {
		return apperr.ErrSelfTransfer
	}
	if from.Balance < amount {
		return apperr.ErrInsufficientFunds
	}
	from.Balance -= amount
	to.Balance += amount
	return nil
}

// LockOrder returns the two account numbers in the order their rows must be
// locked. Locking in a stable order prevents deadlock when a transfer and its
// reverse run concurrently.
func LockOrder(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
