package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// geminiResponse wraps text the way the generateContent API does.
func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": text},
					},
				},
			},
		},
	}
}

func newFakeGemini(t *testing.T, text string, status int) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(geminiResponse(text))
	}))
	t.Cleanup(server.Close)
	return NewGeminiClientWithBaseURL("test-key", "test-model", server.URL)
}

func TestExtractMenuParsesResponse(t *testing.T) {
	extraction := `{
		"restaurant_name": "Bistro Adelaide",
		"cuisine": "Modern Australian",
		"sections": [
			{
				"name": "Appetizers",
				"dishes": [
					{"name": "Oysters", "description": "", "price": 24.5,
					 "allergens": ["shellfish"], "dietary_tags": []}
				]
			}
		]
	}`

	client := newFakeGemini(t, extraction, http.StatusOK)

	menu, err := client.ExtractMenu(context.Background(), []byte("fake-image"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "Bistro Adelaide", menu.RestaurantName)
	require.Len(t, menu.Sections, 1)
	require.Equal(t, 1, menu.DishCount())
	require.NotNil(t, menu.Sections[0].Dishes[0].Price)
	require.Equal(t, 24.5, *menu.Sections[0].Dishes[0].Price)
}

func TestExtractMenuRejectsNonJSON(t *testing.T) {
	client := newFakeGemini(t, "Sure! Here is your menu:", http.StatusOK)

	_, err := client.ExtractMenu(context.Background(), []byte("fake-image"), "image/jpeg")
	require.Error(t, err)
}

func TestTagDishesCountMismatch(t *testing.T) {
	client := newFakeGemini(t, `{"dishes":[{"allergens":[],"dietary_tags":[]}]}`, http.StatusOK)

	_, err := client.TagDishes(context.Background(), []DishRef{
		{Name: "Pad Thai"},
		{Name: "Green Curry"},
	})
	require.Error(t, err)
}

func TestTagDishes(t *testing.T) {
	client := newFakeGemini(t,
		`{"dishes":[{"allergens":["nuts"],"dietary_tags":["vegetarian"]}]}`,
		http.StatusOK,
	)

	tags, err := client.TagDishes(context.Background(), []DishRef{{Name: "Pad Thai"}})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, []string{"nuts"}, tags[0].Allergens)
}
