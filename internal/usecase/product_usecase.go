package usecase

import (
	"context"
	"time"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
	"farmlink/pkg/logger"
)

type ProductUseCase struct {
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	notificationUc *NotificationUseCase
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notificationUc *NotificationUseCase,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:    productRepo,
		userRepo:       userRepo,
		notificationUc: notificationUc,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Unit        string
	Quantity    int
	Location    string
	IsOrganic   bool
	HarvestDate *time.Time
	ImageURL    string
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, farmerID string, input CreateProductInput) (*entity.Product, error) {
	farmer, err := uc.userRepo.GetByID(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if farmer.Role != entity.RoleFarmer {
		return nil, errors.Forbidden("Only farmers can list products", nil)
	}

	if input.Price <= 0 {
		return nil, errors.BadRequest("Price must be greater than zero", nil)
	}
	if input.Quantity <= 0 {
		return nil, errors.BadRequest("Quantity must be greater than zero", nil)
	}

	product := &entity.Product{
		FarmerID:    farmerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		Location:    input.Location,
		IsOrganic:   input.IsOrganic,
		HarvestDate: input.HarvestDate,
		ImageURL:    input.ImageURL,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	// Buyer fanout can be large; it runs detached from the request.
	go func() {
		created := uc.notificationUc.BroadcastNewProduct(context.Background(), product, farmer.FullName)
		logger.Info("Broadcast new product %s to %d buyers", product.ID, created)
	}()

	return product, nil
}

type FarmerContact struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type ProductDetail struct {
	Product *entity.Product `json:"product"`
	Farmer  FarmerContact   `json:"farmer"`
}

// GetProductDetail resolves the product together with the farmer's public
// profile. The phone number is disclosed only while the product's contact
// gate is open.
func (uc *ProductUseCase) GetProductDetail(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{Product: product}

	farmer, err := uc.userRepo.GetByID(ctx, product.FarmerID)
	if err != nil {
		detail.Farmer = FarmerContact{ID: product.FarmerID, FullName: entity.PlaceholderName}
		return detail, nil
	}

	detail.Farmer = FarmerContact{
		ID:       farmer.ID,
		FullName: farmer.FullName,
		Location: farmer.Location,
	}
	if product.ShowContactNumber {
		detail.Farmer.Phone = farmer.Phone
	}

	return detail, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, filter, limit, offset)
}

func (uc *ProductUseCase) ListMyProducts(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.ListByFarmerID(ctx, farmerID, limit, offset)
}

type UpdateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Unit        string
	Quantity    int
	Location    string
	IsOrganic   bool
	HarvestDate *time.Time
	ImageURL    string
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, farmerID, productID string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.FarmerID != farmerID {
		return nil, errors.Forbidden("You don't have permission to update this product", nil)
	}

	if input.Price <= 0 {
		return nil, errors.BadRequest("Price must be greater than zero", nil)
	}
	if input.Quantity < 0 {
		return nil, errors.BadRequest("Quantity cannot be negative", nil)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = input.Category
	product.Price = input.Price
	product.Unit = input.Unit
	product.Quantity = input.Quantity
	product.Location = input.Location
	product.IsOrganic = input.IsOrganic
	product.HarvestDate = input.HarvestDate
	product.ImageURL = input.ImageURL

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, farmerID, productID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if product.FarmerID != farmerID {
		return errors.Forbidden("You don't have permission to delete this product", nil)
	}

	return uc.productRepo.Delete(ctx, productID)
}
