package usecase

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type MarketPriceUseCase struct {
	marketPriceRepo repository.MarketPriceRepository
	userRepo        repository.UserRepository
}

func NewMarketPriceUseCase(
	marketPriceRepo repository.MarketPriceRepository,
	userRepo repository.UserRepository,
) *MarketPriceUseCase {
	return &MarketPriceUseCase{
		marketPriceRepo: marketPriceRepo,
		userRepo:        userRepo,
	}
}

func (uc *MarketPriceUseCase) ListPrices(ctx context.Context) ([]*entity.MarketPrice, error) {
	return uc.marketPriceRepo.List(ctx)
}

type UpsertMarketPriceInput struct {
	ID       string
	Name     string
	Category string
	Price    float64
}

// UpsertPrice creates or updates one commodity row. Admin only.
func (uc *MarketPriceUseCase) UpsertPrice(ctx context.Context, userID string, input UpsertMarketPriceInput) (*entity.MarketPrice, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleAdmin {
		return nil, errors.Forbidden("Only admins can manage market prices", nil)
	}

	if input.Name == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}
	if input.Price <= 0 {
		return nil, errors.BadRequest("Price must be greater than zero", nil)
	}

	if input.ID != "" {
		price, err := uc.marketPriceRepo.GetByID(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		price.Name = input.Name
		price.Category = input.Category
		price.Price = input.Price
		if err := uc.marketPriceRepo.Update(ctx, price); err != nil {
			return nil, err
		}
		return price, nil
	}

	price := &entity.MarketPrice{
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
	}
	if err := uc.marketPriceRepo.Create(ctx, price); err != nil {
		return nil, err
	}
	return price, nil
}
