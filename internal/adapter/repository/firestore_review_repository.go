package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()

	_, err := r.client.Collection("farmer_reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.Unavailable("Failed to create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.Review, error) {
	query := r.client.Collection("farmer_reviews").Where("orderId", "==", orderID).Limit(1)
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Review", nil)
		}
		return nil, errors.Unavailable("Failed to query review by order", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}

	return &review, nil
}

func (r *firestoreReviewRepository) ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Review, int64, error) {
	query := r.client.Collection("farmer_reviews").
		Where("farmerId", "==", farmerID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching reviews for farmer %s: %v", farmerID, err)
		return nil, 0, errors.Unavailable("Failed to fetch reviews", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var reviews []*entity.Review
	for i := start; i < end; i++ {
		var review entity.Review
		if err := allDocs[i].DataTo(&review); err != nil {
			log.Printf("Error parsing review data: %v", err)
			continue
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, nil
}
