package menu

import "time"

// Menu is the top-level document a restaurant publishes.
type Menu struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
}

// Section is a named, ordered grouping of dishes. DisplayOrder values
// need not be contiguous; they only define the sort order, with ties
// broken by fetch order.
type Section struct {
	ID           string `json:"id"`
	MenuID       string `json:"menu_id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Dishes       []Dish `json:"dishes"`
}

// Dish is a single orderable item. A nil Price means "not priced".
// MenuID is denormalized onto the dish for query convenience.
type Dish struct {
	ID          string   `json:"id"`
	SectionID   string   `json:"section_id"`
	MenuID      string   `json:"menu_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Allergens   []string `json:"allergens"`
	DietaryTags []string `json:"dietary_tags"`
}

// SectionFields carries a partial section update. Nil fields are left
// untouched.
type SectionFields struct {
	Name         *string
	DisplayOrder *int
}

// DishFields carries a partial dish update. Nil pointer fields and nil
// slices are left untouched. Price needs its own set flag because a
// nil price is a legal target value (clearing the price).
type DishFields struct {
	SectionID   *string
	Name        *string
	Description *string
	Price       *float64
	PriceSet    bool
	Allergens   []string
	DietaryTags []string
}

// Empty reports whether the update would touch nothing.
func (f SectionFields) Empty() bool {
	return f.Name == nil && f.DisplayOrder == nil
}

func (f DishFields) Empty() bool {
	return f.SectionID == nil && f.Name == nil && f.Description == nil &&
		!f.PriceSet && f.Allergens == nil && f.DietaryTags == nil
}
