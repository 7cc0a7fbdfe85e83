package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		// the API tier throttles upstream; self-limiting keeps bursts
		// of batch calls under the quota instead of eating 429s
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// NewGeminiClientWithBaseURL points the client at a different endpoint
// with no request limiter. Tests use this with an httptest server.
func NewGeminiClientWithBaseURL(apiKey, model, baseURL string) *GeminiClient {
	c := NewGeminiClient(apiKey, model)
	c.baseURL = baseURL
	c.limiter = nil
	return c
}

// ExtractMenu sends the menu file inline to Gemini and parses the
// structured result.
func (g *GeminiClient) ExtractMenu(ctx context.Context, fileData []byte, mimeType string) (*ExtractedMenu, error) {
	if len(fileData) == 0 {
		return nil, errors.New("empty file data")
	}

	parts := []map[string]any{
		{"text": BuildExtractionPrompt()},
		{
			"inline_data": map[string]string{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(fileData),
			},
		},
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var extracted ExtractedMenu
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, errors.New("invalid extraction JSON output")
	}
	return &extracted, nil
}

// TagDishes asks Gemini for allergen/dietary tags for a dish batch.
func (g *GeminiClient) TagDishes(ctx context.Context, dishes []DishRef) ([]DishTags, error) {
	if len(dishes) == 0 {
		return nil, nil
	}

	parts := []map[string]any{
		{"text": BuildTagPrompt(dishes)},
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var result struct {
		Dishes []DishTags `json:"dishes"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.New("invalid tagging JSON output")
	}
	if len(result.Dishes) != len(dishes) {
		return nil, fmt.Errorf("tagging returned %d entries for %d dishes",
			len(result.Dishes), len(dishes))
	}
	return result.Dishes, nil
}

// generate runs one generateContent call and returns the JSON-only
// text of the first candidate.
func (g *GeminiClient) generate(ctx context.Context, parts []map[string]any) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("missing GEMINI_API_KEY")
	}
	if g.model == "" {
		return "", errors.New("missing GEMINI_MODEL")
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	url := fmt.Sprintf(
		"%s/models/%s:generateContent?key=%s",
		g.baseURL,
		g.model,
		g.apiKey,
	)

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 8192,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: %s", string(raw))
	}

	// Gemini response shape
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty gemini response")
	}

	output := result.Candidates[0].Content.Parts[0].Text

	if !json.Valid([]byte(output)) {
		return "", errors.New("gemini returned non-json output")
	}

	return output, nil
}
