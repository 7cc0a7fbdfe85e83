package menu

import "context"

// Repository defines all database operations for menus, sections and
// dishes. The single-row section/dish primitives at the bottom are
// consumed by the diff-sync editor; the batch reads by enrichment.
type Repository interface {

	// -------------------------------
	// Menus
	// -------------------------------

	CreateMenu(ctx context.Context, m *Menu) error
	GetMenu(ctx context.Context, menuID string) (*Menu, error)
	GetMenuBySlug(ctx context.Context, slug string) (*Menu, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// LoadTree returns sections ordered by display_order (stable on
	// ties), each with its dishes.
	LoadTree(ctx context.Context, menuID string) ([]Section, error)

	// -------------------------------
	// Single-row primitives
	// -------------------------------

	InsertSection(ctx context.Context, s *Section) error
	UpdateSection(ctx context.Context, sectionID string, fields SectionFields) error
	// DeleteSection cascades to the section's dishes at the storage
	// layer.
	DeleteSection(ctx context.Context, sectionID string) error

	InsertDish(ctx context.Context, d *Dish) error
	UpdateDish(ctx context.Context, dishID string, fields DishFields) error
	DeleteDish(ctx context.Context, dishID string) error

	// -------------------------------
	// Enrichment batch reads/writes
	// -------------------------------

	CountDishes(ctx context.Context, menuID string) (int, error)
	// ListDishes pages through a menu's dishes in section order, then
	// insertion order, matching the order ingestion wrote them.
	ListDishes(ctx context.Context, menuID string, offset, limit int) ([]Dish, error)
	UpdateDishTags(ctx context.Context, dishID string, allergens, dietaryTags []string) error
}
