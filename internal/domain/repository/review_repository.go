package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByOrderID(ctx context.Context, orderID string) (*entity.Review, error)
	ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Review, int64, error)
}
