package entity

import "time"

const (
	ListingStatusActive    = "active"
	ListingStatusSold      = "sold"
	ListingStatusSuspended = "suspended"
)

type Listing struct {
	ID          string    `json:"id" firestore:"id"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Category    string    `json:"category" firestore:"category"` // "agent", "prompt-pack", "model", "plugin", "dataset"
	Price       float64   `json:"price" firestore:"price"`
	ImageURL    string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	DemoURL     string    `json:"demo_url,omitempty" firestore:"demoUrl,omitempty"`
	Status      string    `json:"status" firestore:"status"`
	Views       int       `json:"views" firestore:"views"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}
