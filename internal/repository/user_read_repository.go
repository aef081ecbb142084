package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/models"
	sharedredis "github.com/lumenbank/transfer-api/internal/redis"
)

const (
	userViewKeyPrefix          = "user:view:"
	userTransferCountKeyPrefix = "user:transfers:count:"
	processedTransferKeyPrefix = "processed:transfer:"
)

// UserReadRepository serves user projections and per-user activity counters.
// Redis is the primary read store with a transparent PostgreSQL fallback.
type UserReadRepository struct {
	db    *sql.DB
	redis *goredis.Client
	cache *sharedredis.ViewCache[models.UserView]
}

func NewUserReadRepository(db *sql.DB, redisClient *goredis.Client) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		redis: redisClient,
		cache: sharedredis.NewViewCache[models.UserView](redisClient, 0),
	}
}

// GetByID returns a UserView, trying Redis first then PostgreSQL.
func (r *UserReadRepository) GetByID(ctx context.Context, userID string) (*models.UserView, error) {
	cacheKey := userViewKeyPrefix + userID
	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	query := `
		SELECT id, email, first_name, last_name, phone_number, country, created_at
		FROM users
		WHERE id = $1
	`
	var view models.UserView
	pgErr := r.db.QueryRow(query, userID).Scan(
		&view.ID, &view.Email, &view.FirstName, &view.LastName,
		&view.PhoneNumber, &view.Country, &view.CreatedAt,
	)
	if pgErr == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if pgErr != nil {
		return nil, fmt.Errorf("failed to get user: %w", pgErr)
	}

	r.CacheUserView(ctx, &view)
	return &view, nil
}

// CacheUserView stores or refreshes the Redis read model for a user.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	r.cache.Set(ctx, userViewKeyPrefix+view.ID, view)
}

// IncrTransferCount bumps the activity counter shown on the user dashboard.
func (r *UserReadRepository) IncrTransferCount(ctx context.Context, userID string) {
	if err := r.redis.Incr(ctx, userTransferCountKeyPrefix+userID).Err(); err != nil {
		log.Printf("Failed to increment transfer count for user %s: %v", userID, err)
	}
}

// TransferCount returns the number of transfers the user has taken part in.
// A missing key reads as zero.
func (r *UserReadRepository) TransferCount(ctx context.Context, userID string) int64 {
	count, err := r.redis.Get(ctx, userTransferCountKeyPrefix+userID).Int64()
	if err != nil {
		return 0
	}
	return count
}

// IsTransferProcessed reports whether this transfer ID has already been
// projected. Guards against duplicate delivery under at-least-once Redis
// Streams semantics.
func (r *UserReadRepository) IsTransferProcessed(ctx context.Context, transferID string) bool {
	val, err := r.redis.Exists(ctx, processedTransferKeyPrefix+transferID).Result()
	return err == nil && val > 0
}

// MarkTransferProcessed records that a transfer event has been applied.
// The key expires after 72 hours, long enough to cover any realistic
// redelivery window from a consumer group.
func (r *UserReadRepository) MarkTransferProcessed(ctx context.Context, transferID string) {
	key := processedTransferKeyPrefix + transferID
	if err := r.redis.Set(ctx, key, "1", 72*time.Hour).Err(); err != nil {
		log.Printf("Failed to mark transfer %s as processed: %v", transferID, err)
	}
}
