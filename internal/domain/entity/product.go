package entity

import "time"

type Product struct {
	ID          string     `json:"id" firestore:"id"`
	FarmerID    string     `json:"farmer_id" firestore:"farmerId"`
	Name        string     `json:"name" firestore:"name"`
	Description string     `json:"description,omitempty" firestore:"description,omitempty"`
	Category    string     `json:"category" firestore:"category"`
	Price       float64    `json:"price" firestore:"price"`
	Unit        string     `json:"unit" firestore:"unit"`
	Quantity    int        `json:"quantity" firestore:"quantity"`
	Location    string     `json:"location,omitempty" firestore:"location,omitempty"`
	IsOrganic   bool       `json:"is_organic" firestore:"isOrganic"`
	HarvestDate *time.Time `json:"harvest_date,omitempty" firestore:"harvestDate,omitempty"`
	ImageURL    string     `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`

	// ShowContactNumber gates disclosure of the farmer's phone to buyers.
	// Flipped true only by the owning farmer, as a side effect of accepting
	// an offer on this product.
	ShowContactNumber bool `json:"show_contact_number" firestore:"showContactNumber"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
