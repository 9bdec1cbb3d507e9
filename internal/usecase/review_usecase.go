package usecase

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

type CreateReviewInput struct {
	OrderID string
	Rating  int
	Comment string
}

// CreateReview records a buyer's rating of a farmer. One review per completed
// order, by the order's buyer only.
func (uc *ReviewUseCase) CreateReview(ctx context.Context, buyerID string, input CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.BadRequest("Rating must be between 1 and 5", nil)
	}

	order, err := uc.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if order.BuyerID != buyerID {
		return nil, errors.Forbidden("Only the order's buyer can review it", nil)
	}
	if order.Status != entity.OrderStatusCompleted {
		return nil, errors.PreconditionFailed("Only completed orders can be reviewed", nil)
	}

	if existing, err := uc.reviewRepo.GetByOrderID(ctx, input.OrderID); err == nil && existing != nil {
		return nil, errors.BadRequest("This order has already been reviewed", nil)
	}

	review := &entity.Review{
		OrderID:  order.ID,
		BuyerID:  buyerID,
		FarmerID: order.FarmerID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}

	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (uc *ReviewUseCase) ListFarmerReviews(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Review, int64, error) {
	return uc.reviewRepo.ListByFarmerID(ctx, farmerID, limit, offset)
}

// GetFarmerRating derives the farmer's average rating from all reviews. The
// average is never stored; it is recomputed on each fetch.
func (uc *ReviewUseCase) GetFarmerRating(ctx context.Context, farmerID string) (*entity.RatingSummary, error) {
	reviews, total, err := uc.reviewRepo.ListByFarmerID(ctx, farmerID, 0, 0)
	if err != nil {
		return nil, err
	}

	summary := &entity.RatingSummary{FarmerID: farmerID, ReviewCount: int(total)}
	if len(reviews) == 0 {
		return summary, nil
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	summary.AverageRating = float64(sum) / float64(len(reviews))

	return summary, nil
}
