package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/ledger"
	"github.com/lumenbank/transfer-api/internal/models"
)

// TransferWriteRepository owns the transfer write path. The debit, the credit
// and the transfer record are committed as one PostgreSQL transaction; the
// two account rows are taken with SELECT ... FOR UPDATE in account-number
// order so concurrent transfers over the same accounts serialise instead of
// losing updates or deadlocking.
type TransferWriteRepository struct {
	db *sql.DB
}

func NewTransferWriteRepository(db *sql.DB) *TransferWriteRepository {
	return &TransferWriteRepository{db: db}
}

// PerformTransfer applies transfer atomically and returns the updated source
// and destination accounts. callerUserID must own the source account.
// On any error no balance is changed and no transfer row exists.
func (r *TransferWriteRepository) PerformTransfer(ctx context.Context, callerUserID string, transfer *models.Transfer) (*models.Account, *models.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback()

	first, second := ledger.LockOrder(transfer.FromAccountNumber, transfer.ToAccountNumber)
	locked := make(map[string]*models.Account, 2)
	for _, number := range []string{first, second} {
		account, err := lockAccount(ctx, tx, number)
		if err == sql.ErrNoRows {
			if number == transfer.FromAccountNumber {
				return nil, nil, apperr.ErrSourceAccountNotFound
			}
			return nil, nil, apperr.ErrDestinationAccountNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock account %s: %w", number, err)
		}
		locked[number] = account
	}

	from := locked[transfer.FromAccountNumber]
	to := locked[transfer.ToAccountNumber]

	if from.UserID != callerUserID {
		return nil, nil, apperr.ErrForbidden
	}
	if err := ledger.ApplyTransfer(from, to, transfer.Amount); err != nil {
		return nil, nil, err
	}

	for _, account := range []*models.Account{from, to} {
		if err := updateBalance(ctx, tx, account); err != nil {
			return nil, nil, err
		}
	}

	insertQuery := `
		INSERT INTO transfers (id, from_account_number, to_account_number, amount, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		transfer.ID, transfer.FromAccountNumber, transfer.ToAccountNumber,
		transfer.Amount, nullString(transfer.Description), transfer.Status, transfer.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return from, to, nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, accountNumber string) (*models.Account, error) {
	query := `
		SELECT account_number, user_id, balance, currency, created_at
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`
	var account models.Account
	err := tx.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber, &account.UserID, &account.Balance,
		&account.Currency, &account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func updateBalance(ctx context.Context, tx *sql.Tx, account *models.Account) error {
	query := `UPDATE accounts SET balance = $2 WHERE account_number = $1`
	result, err := tx.ExecContext(ctx, query, account.AccountNumber, account.Balance)
	if err != nil {
		return fmt.Errorf("failed to update balance for %s: %w", account.AccountNumber, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.ErrAccountNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
