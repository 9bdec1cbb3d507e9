package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

type MarketPriceRepository interface {
	Create(ctx context.Context, price *entity.MarketPrice) error
	GetByID(ctx context.Context, id string) (*entity.MarketPrice, error)
	// List returns all price rows ordered by name.
	List(ctx context.Context) ([]*entity.MarketPrice, error)
	Update(ctx context.Context, price *entity.MarketPrice) error
	// Subscribe streams price inserts and updates until ctx is cancelled.
	// The channel is closed when the feed ends.
	Subscribe(ctx context.Context) (<-chan *entity.MarketPrice, error)
}
