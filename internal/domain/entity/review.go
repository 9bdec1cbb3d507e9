package entity

import "time"

// Review is a buyer's rating of a farmer, tied to one completed order.
type Review struct {
	ID        string    `json:"id" firestore:"id"`
	OrderID   string    `json:"order_id" firestore:"orderId"`
	BuyerID   string    `json:"buyer_id" firestore:"buyerId"`
	FarmerID  string    `json:"farmer_id" firestore:"farmerId"`
	Rating    int       `json:"rating" firestore:"rating"`
	Comment   string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// RatingSummary aggregates a farmer's reviews, derived on read.
type RatingSummary struct {
	FarmerID      string  `json:"farmer_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}
