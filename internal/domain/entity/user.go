package entity

import "time"

const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

// PlaceholderName is substituted when a profile lookup comes back empty, so
// a dangling reference never breaks conversation aggregation.
const PlaceholderName = "Unknown User"

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	FullName string `json:"full_name" firestore:"fullName"`
	Phone    string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role     string `json:"role" firestore:"role"`

	Location string `json:"location,omitempty" firestore:"location,omitempty"`
	Bio      string `json:"bio,omitempty" firestore:"bio,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
