package restaurant

import (
	"context"
	"errors"
)

var ErrNotOwner = errors.New("unauthorized")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// --------------------------------------------------
// Create restaurant
// --------------------------------------------------
func (s *Service) CreateRestaurant(
	ctx context.Context,
	name string,
	city string,
	cuisineType string,
	ownerID string,
) (*Restaurant, error) {

	if name == "" || city == "" || cuisineType == "" {
		return nil, errors.New("missing required fields")
	}

	restaurant := &Restaurant{
		Name:        name,
		City:        city,
		CuisineType: cuisineType,
		OwnerID:     ownerID,
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, err
	}

	return restaurant, nil
}

// --------------------------------------------------
// List restaurants owned by user
// --------------------------------------------------
func (s *Service) ListMyRestaurants(ctx context.Context, ownerID string) ([]*Restaurant, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// --------------------------------------------------
// Ownership gate used by menu endpoints
// --------------------------------------------------
func (s *Service) RequireOwner(ctx context.Context, restaurantID, userID string) error {
	isOwner, err := s.repo.IsOwner(ctx, restaurantID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNotOwner
	}
	return nil
}
