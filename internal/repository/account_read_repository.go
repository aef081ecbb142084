package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/models"
	sharedredis "github.com/lumenbank/transfer-api/internal/redis"
)

const accountViewKeyPrefix = "account:view:"

// accountCacheEntry is the internal Redis representation of an account.
// Unlike models.AccountView's JSON form, it carries UserID so ownership
// checks can be answered straight from the cache.
type accountCacheEntry struct {
	AccountNumber string       `json:"accountNumber"`
	UserID        string       `json:"userId"`
	Balance       models.Money `json:"balance"`
	Currency      string       `json:"currency"`
	CreatedAt     time.Time    `json:"createdTimestamp"`
}

// AccountReadRepository handles all read operations for accounts. Redis is
// the primary read store; PostgreSQL is the transparent fallback, and every
// cold read warms the cache.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[accountCacheEntry]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[accountCacheEntry](redisClient, 0),
	}
}

func cacheEntryToView(e *accountCacheEntry) *models.AccountView {
	return &models.AccountView{
		AccountNumber: e.AccountNumber,
		UserID:        e.UserID,
		Balance:       e.Balance,
		Currency:      e.Currency,
		CreatedAt:     e.CreatedAt,
	}
}

// GetByAccountNumber returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.AccountView, error) {
	cacheKey := accountViewKeyPrefix + accountNumber
	if entry, ok := r.cache.Get(ctx, cacheKey); ok {
		return cacheEntryToView(entry), nil
	}

	query := `
		SELECT account_number, user_id, balance, currency, created_at
		FROM accounts
		WHERE account_number = $1
	`
	var view models.AccountView
	pgErr := r.db.QueryRow(query, accountNumber).Scan(
		&view.AccountNumber, &view.UserID, &view.Balance, &view.Currency, &view.CreatedAt,
	)
	if pgErr == sql.ErrNoRows {
		return nil, apperr.ErrAccountNotFound
	}
	if pgErr != nil {
		return nil, fmt.Errorf("failed to get account: %w", pgErr)
	}

	r.CacheAccountView(ctx, &view)
	return &view, nil
}

// ListByUserID returns all AccountViews for the given user from PostgreSQL.
func (r *AccountReadRepository) ListByUserID(ctx context.Context, userID string) ([]models.AccountView, error) {
	query := `
		SELECT account_number, user_id, balance, currency, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var views []models.AccountView
	for rows.Next() {
		var view models.AccountView
		if err := rows.Scan(
			&view.AccountNumber, &view.UserID, &view.Balance, &view.Currency, &view.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// CacheAccountView stores or refreshes the Redis read model for an account.
// The command side calls this after every balance mutation so the read model
// never serves a stale balance for longer than the write round-trip.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	entry := &accountCacheEntry{
		AccountNumber: view.AccountNumber,
		UserID:        view.UserID,
		Balance:       view.Balance,
		Currency:      view.Currency,
		CreatedAt:     view.CreatedAt,
	}
	r.cache.Set(ctx, accountViewKeyPrefix+view.AccountNumber, entry)
}
