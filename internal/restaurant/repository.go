package restaurant

import "context"

type Repository interface {
	Create(ctx context.Context, restaurant *Restaurant) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Restaurant, error)

	// ownership check, enforced before any menu mutation
	IsOwner(ctx context.Context, restaurantID string, userID string) (bool, error)
}
