package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/models"
)

// UserWriteRepository handles all state-mutating operations for users.
// It operates exclusively against the PostgreSQL write store (source of truth).
type UserWriteRepository struct {
	db *sql.DB
}

func NewUserWriteRepository(db *sql.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// CreateWithDefaultAccount inserts the user row and their seeded default
// account in one transaction. A duplicate email leaves no rows behind.
func (r *UserWriteRepository) CreateWithDefaultAccount(user *models.User, account *models.Account) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin registration: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone_number, country, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(userQuery,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.Country, user.Role, user.Active, user.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	accountQuery := `
		INSERT INTO accounts (account_number, user_id, balance, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(accountQuery,
		account.AccountNumber, account.UserID, account.Balance, account.Currency, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create default account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

// GetByEmail fetches the full write model (including PasswordHash) for login.
func (r *UserWriteRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone_number, country, role, active, created_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.Country, &user.Role, &user.Active, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByID fetches the full write model by user ID.
func (r *UserWriteRepository) GetByID(id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone_number, country, role, active, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.Country, &user.Role, &user.Active, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
