package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Product, int64, error)
	ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	// SetContactVisible flips the contact-visibility flag. ownerID must match
	// the product's farmer; the check is enforced store-side so a spoofed
	// caller cannot leak contact info.
	SetContactVisible(ctx context.Context, id, ownerID string, visible bool) error
}
