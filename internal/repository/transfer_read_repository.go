package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/models"
	sharedredis "github.com/lumenbank/transfer-api/internal/redis"
)

const transferViewKeyPrefix = "transfer:view:"

// TransferReadRepository serves transfer history reads. Individual transfers
// are cached in Redis; history listings always come from PostgreSQL, newest
// first.
type TransferReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.TransferView]
}

func NewTransferReadRepository(db *sql.DB, redisClient *goredis.Client) *TransferReadRepository {
	return &TransferReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.TransferView](redisClient, 0),
	}
}

// GetByID returns a single TransferView, trying Redis first then PostgreSQL.
func (r *TransferReadRepository) GetByID(ctx context.Context, transferID string) (*models.TransferView, error) {
	cacheKey := transferViewKeyPrefix + transferID
	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `
		SELECT id, from_account_number, to_account_number, amount, description, status, created_at
		FROM transfers
		WHERE id = $1
	`
	view, err := scanTransferRow(r.db.QueryRowContext(ctx, query, transferID))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	r.CacheTransferView(ctx, view)
	return view, nil
}

// ListByUserID returns every transfer where the user owns the source or the
// destination account, newest first.
func (r *TransferReadRepository) ListByUserID(ctx context.Context, userID string) ([]models.TransferView, error) {
	query := `
		SELECT t.id, t.from_account_number, t.to_account_number, t.amount, t.description, t.status, t.created_at
		FROM transfers t
		JOIN accounts src ON src.account_number = t.from_account_number
		JOIN accounts dst ON dst.account_number = t.to_account_number
		WHERE src.user_id = $1 OR dst.user_id = $1
		ORDER BY t.created_at DESC
	`
	return r.listTransfers(ctx, query, userID)
}

// ListByAccountNumber returns all transfers touching one account as source or
// destination, newest first.
func (r *TransferReadRepository) ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.TransferView, error) {
	query := `
		SELECT id, from_account_number, to_account_number, amount, description, status, created_at
		FROM transfers
		WHERE from_account_number = $1 OR to_account_number = $1
		ORDER BY created_at DESC
	`
	return r.listTransfers(ctx, query, accountNumber)
}

// CacheTransferView stores the Redis read model for a transfer. Transfers are
// immutable, so the entry is written once at creation and never invalidated.
func (r *TransferReadRepository) CacheTransferView(ctx context.Context, view *models.TransferView) {
	r.cache.Set(ctx, transferViewKeyPrefix+view.ID, view)
}

func (r *TransferReadRepository) listTransfers(ctx context.Context, query string, arg any) ([]models.TransferView, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var views []models.TransferView
	for rows.Next() {
		view, err := scanTransferRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransferRow(row rowScanner) (*models.TransferView, error) {
	var view models.TransferView
	var description sql.NullString
	if err := row.Scan(
		&view.ID, &view.FromAccountNumber, &view.ToAccountNumber,
		&view.Amount, &description, &view.Status, &view.CreatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		view.Description = description.String
	}
	return &view, nil
}
