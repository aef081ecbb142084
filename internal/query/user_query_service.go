package query

import (
	"context"

	"github.com/lumenbank/transfer-api/internal/models"
)

// UserReader serves user projections and activity counters.
type UserReader interface {
	GetByID(ctx context.Context, userID string) (*models.UserView, error)
	TransferCount(ctx context.Context, userID string) int64
}

type UserQueryService struct {
	readRepo UserReader
}

func NewUserQueryService(readRepo UserReader) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

// GetProfile returns the caller's own user view together with the projected
// number of transfers they have taken part in.
func (s *UserQueryService) GetProfile(ctx context.Context, userID string) (*models.UserView, int64, error) {
	view, err := s.readRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return view, s.readRepo.TransferCount(ctx, userID), nil
}
