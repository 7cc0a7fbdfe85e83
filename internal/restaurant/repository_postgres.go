package restaurant

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, restaurant *Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.New().String()
	}

	query := `
		INSERT INTO restaurants (
			id,
			owner_id,
			name,
			city,
			cuisine_type
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return r.db.QueryRow(
		ctx,
		query,
		restaurant.ID,
		restaurant.OwnerID,
		restaurant.Name,
		restaurant.City,
		restaurant.CuisineType,
	).Scan(&restaurant.CreatedAt)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Restaurant, error) {
	query := `
		SELECT
			id,
			owner_id,
			name,
			city,
			cuisine_type,
			created_at
		FROM restaurants
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*Restaurant

	for rows.Next() {
		var res Restaurant
		if err := rows.Scan(
			&res.ID,
			&res.OwnerID,
			&res.Name,
			&res.City,
			&res.CuisineType,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, &res)
	}

	return restaurants, nil
}

func (r *PostgresRepository) IsOwner(
	ctx context.Context,
	restaurantID string,
	userID string,
) (bool, error) {

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM restaurants
			WHERE id = $1
			  AND owner_id = $2
		)
	`, restaurantID, userID).Scan(&exists)

	return exists, err
}
