package ai

// ExtractedMenu is the structured result of scanning one menu file.
type ExtractedMenu struct {
	RestaurantName string             `json:"restaurant_name"`
	Cuisine        string             `json:"cuisine"`
	Sections       []ExtractedSection `json:"sections"`
}

type ExtractedSection struct {
	Name   string          `json:"name"`
	Dishes []ExtractedDish `json:"dishes"`
}

type ExtractedDish struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Allergens   []string `json:"allergens"`
	DietaryTags []string `json:"dietary_tags"`
}

// DishCount flattens the section tree.
func (m *ExtractedMenu) DishCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Dishes)
	}
	return n
}

// DishRef is the minimal dish identity sent for tag enrichment.
type DishRef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DishTags is the enrichment result for one dish, positionally
// aligned with the request batch.
type DishTags struct {
	Allergens   []string `json:"allergens"`
	DietaryTags []string `json:"dietary_tags"`
}
