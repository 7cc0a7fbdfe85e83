package ai

import (
	"fmt"
	"strings"
)

func BuildExtractionPrompt() string {
	return `
You are a data extraction engine reading a restaurant menu image or PDF.

Your task:
- Convert the menu into STRICT JSON.
- Output MUST be valid JSON.
- Output MUST start with { and end with }.
- Output MUST contain ONLY JSON.
- NO explanations.
- NO markdown.
- NO comments.
- NO extra text.
- Keep sections in the order they appear on the menu.
- price is a number, or null when the item has no printed price.
- allergens and dietary_tags are lower-case strings; use [] when unknown.

If you cannot extract data, return this exact JSON:
{
  "restaurant_name": "",
  "cuisine": "",
  "sections": []
}

Required JSON schema:
{
  "restaurant_name": "string",
  "cuisine": "string",
  "sections": [
    {
      "name": "string",
      "dishes": [
        {
          "name": "string",
          "description": "string",
          "price": number | null,
          "allergens": ["string"],
          "dietary_tags": ["string"]
        }
      ]
    }
  ]
}
`
}

func BuildTagPrompt(dishes []DishRef) string {
	var b strings.Builder
	b.WriteString(`
You are a food-safety labelling engine.

For each dish below, infer likely allergens (e.g. nuts, gluten, dairy,
shellfish, egg, soy) and dietary tags (e.g. vegan, vegetarian,
gluten-free, halal).

Rules:
- Output MUST be valid JSON and ONLY JSON.
- Output MUST contain exactly one entry per dish, in the same order.
- All tags lower-case. Use [] when nothing applies.

Required JSON schema:
{
  "dishes": [
    { "allergens": ["string"], "dietary_tags": ["string"] }
  ]
}

DISHES:
`)
	for i, d := range dishes {
		fmt.Fprintf(&b, "%d. %s", i+1, d.Name)
		if d.Description != "" {
			fmt.Fprintf(&b, " - %s", d.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
