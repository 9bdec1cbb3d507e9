package entity

import "time"

// MarketPrice is one commodity reference price row, maintained by admins.
type MarketPrice struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	Category  string    `json:"category" firestore:"category"`
	Price     float64   `json:"price" firestore:"price"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
