package entity

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         string    `json:"id" firestore:"id"`
	BuyerID    string    `json:"buyer_id" firestore:"buyerId"`
	FarmerID   string    `json:"farmer_id" firestore:"farmerId"`
	ProductID  string    `json:"product_id" firestore:"productId"`
	Quantity   int       `json:"quantity" firestore:"quantity"`
	TotalPrice float64   `json:"total_price" firestore:"totalPrice"`
	Status     string    `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
