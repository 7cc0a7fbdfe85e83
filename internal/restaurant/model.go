package restaurant

import "time"

type Restaurant struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	CuisineType string    `json:"cuisine_type"`
	CreatedAt   time.Time `json:"created_at"`
}
