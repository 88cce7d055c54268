package entity

import "time"

type Article struct {
	ID          string    `json:"id" firestore:"id"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Price       float64   `json:"price" firestore:"price"`
	Category    string    `json:"category" firestore:"category"`
	Photos      []string  `json:"photos,omitempty" firestore:"photos,omitempty"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Status      string    `json:"status" firestore:"status"` // "active", "sold", "paused"
	Views       int64     `json:"views" firestore:"views"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}
