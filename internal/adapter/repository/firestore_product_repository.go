package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Unavailable("Failed to create product", err)
	}

	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection("products").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Unavailable("Failed to get product", err)
	}

	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	return &product, nil
}

func (r *firestoreProductRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.client.Collection("products").Query
	for field, value := range filter {
		query = query.Where(field, "==", value)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreProductRepository) ListByFarmerID(ctx context.Context, farmerID string, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.client.Collection("products").
		Where("farmerId", "==", farmerID).
		OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreProductRepository) collect(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Product, int64, error) {
	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching products: %v", err)
		return nil, 0, errors.Unavailable("Failed to fetch products", err)
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

	var products []*entity.Product
	for i := start; i < end; i++ {
		var product entity.Product
		if err := allDocs[i].DataTo(&product); err != nil {
			log.Printf("Error parsing product data: %v", err)
			continue
		}
		products = append(products, &product)
	}

	return products, total, nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Unavailable("Failed to update product", err)
	}

	return nil
}

func (r *firestoreProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("products").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Unavailable("Failed to delete product", err)
	}

	return nil
}

// SetContactVisible checks ownership inside the transaction; a caller who is
// not the product's farmer cannot flip the flag no matter what it claims.
func (r *firestoreProductRepository) SetContactVisible(ctx context.Context, id, ownerID string, visible bool) error {
	ref := r.client.Collection("products").Doc(id)

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Product", err)
			}
			return errors.Unavailable("Failed to get product", err)
		}

		var product entity.Product
		if err := doc.DataTo(&product); err != nil {
			return errors.Internal("Failed to parse product data", err)
		}
		if product.FarmerID != ownerID {
			return errors.Forbidden("Only the product owner can change contact visibility", nil)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "showContactNumber", Value: visible},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return err
		}
		return errors.Unavailable("Failed to update contact visibility", err)
	}

	return nil
}
