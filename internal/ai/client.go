package ai

import "context"

// Client is the AI vision/tagging collaborator. The Gemini
// implementation is the real one; tests substitute fakes.
type Client interface {
	// ExtractMenu reads a menu photo or PDF into a structured tree.
	ExtractMenu(ctx context.Context, fileData []byte, mimeType string) (*ExtractedMenu, error)

	// TagDishes backfills allergen/dietary tags for a batch of
	// dishes. The result is positionally aligned with the input.
	TagDishes(ctx context.Context, dishes []DishRef) ([]DishTags, error)
}
