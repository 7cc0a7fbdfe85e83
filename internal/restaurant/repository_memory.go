package restaurant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	restaurants map[string]*Restaurant
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		restaurants: make(map[string]*Restaurant),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, restaurant *Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.New().String()
	}
	restaurant.CreatedAt = time.Now()
	r.restaurants[restaurant.ID] = restaurant
	return nil
}

func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*Restaurant, error) {
	var out []*Restaurant
	for _, res := range r.restaurants {
		if res.OwnerID == ownerID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) IsOwner(_ context.Context, restaurantID, userID string) (bool, error) {
	res, ok := r.restaurants[restaurantID]
	return ok && res.OwnerID == userID, nil
}
