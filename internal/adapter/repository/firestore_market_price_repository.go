package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/errors"
)

type firestoreMarketPriceRepository struct {
	client *firestore.Client
}

func NewFirestoreMarketPriceRepository(client *firestore.Client) repository.MarketPriceRepository {
	return &firestoreMarketPriceRepository{
		client: client,
	}
}

func (r *firestoreMarketPriceRepository) Create(ctx context.Context, price *entity.MarketPrice) error {
	if price.ID == "" {
		price.ID = uuid.New().String()
	}

	now := time.Now()
	price.CreatedAt = now
	price.UpdatedAt = now

	_, err := r.client.Collection("market_prices").Doc(price.ID).Set(ctx, price)
	if err != nil {
		return errors.Unavailable("Failed to create market price", err)
	}

	return nil
}

func (r *firestoreMarketPriceRepository) GetByID(ctx context.Context, id string) (*entity.MarketPrice, error) {
	doc, err := r.client.Collection("market_prices").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Market price", err)
		}
		return nil, errors.Unavailable("Failed to get market price", err)
	}

	var price entity.MarketPrice
	if err := doc.DataTo(&price); err != nil {
		return nil, errors.Internal("Failed to parse market price data", err)
	}
	return &price, nil
}

func (r *firestoreMarketPriceRepository) List(ctx context.Context) ([]*entity.MarketPrice, error) {
	query := r.client.Collection("market_prices").OrderBy("name", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var prices []*entity.MarketPrice
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating market prices: %v", err)
			return nil, errors.Unavailable("Failed to list market prices", err)
		}

		var price entity.MarketPrice
		if err := doc.DataTo(&price); err != nil {
			log.Printf("Error parsing market price data: %v", err)
			continue
		}
		prices = append(prices, &price)
	}

	return prices, nil
}

func (r *firestoreMarketPriceRepository) Update(ctx context.Context, price *entity.MarketPrice) error {
	price.UpdatedAt = time.Now()

	_, err := r.client.Collection("market_prices").Doc(price.ID).Set(ctx, price)
	if err != nil {
		return errors.Unavailable("Failed to update market price", err)
	}

	return nil
}

func (r *firestoreMarketPriceRepository) Subscribe(ctx context.Context) (<-chan *entity.MarketPrice, error) {
	query := r.client.Collection("market_prices").OrderBy("name", firestore.Asc)

	changes := make(chan *entity.MarketPrice, 16)

	go func() {
		defer close(changes)

		snapIter := query.Snapshots(ctx)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Market price subscription ended: %v", err)
				}
				return
			}

			for _, change := range snap.Changes {
				if change.Kind != firestore.DocumentAdded && change.Kind != firestore.DocumentModified {
					continue
				}

				var price entity.MarketPrice
				if err := change.Doc.DataTo(&price); err != nil {
					log.Printf("Error parsing market price change: %v", err)
					continue
				}

				select {
				case changes <- &price:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes, nil
}
