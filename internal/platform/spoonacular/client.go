package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Timeout bounds every call to the recipe API.
const Timeout = 20 * time.Second

// SearchParams are the filters for a complex recipe search.
type SearchParams struct {
	Ingredients  []string
	MaxReadyTime int
	Intolerances []string
	Diet         string
}

// Client is a client for the Spoonacular recipe API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new recipe API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: Timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// SearchRecipes runs a complex search with recipe and nutrition information
// inline. The response body is returned unmodified.
func (c *Client) SearchRecipes(ctx context.Context, params SearchParams) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("addRecipeInformation", "true")
	q.Set("addNutritionInformation", "true")
	if len(params.Ingredients) > 0 {
		q.Set("includeIngredients", strings.Join(params.Ingredients, ","))
	}
	if params.MaxReadyTime > 0 {
		q.Set("maxReadyTime", strconv.Itoa(params.MaxReadyTime))
	}
	if len(params.Intolerances) > 0 {
		q.Set("intolerances", strings.Join(params.Intolerances, ","))
	}
	if params.Diet != "" {
		q.Set("diet", params.Diet)
	}

	return c.get(ctx, "/recipes/complexSearch", q)
}

// RecipeInformation fetches full details, including nutrition, for one recipe.
func (c *Client) RecipeInformation(ctx context.Context, recipeID int64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("includeNutrition", "true")

	return c.get(ctx, fmt.Sprintf("/recipes/%d/information", recipeID), q)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	return json.RawMessage(body), nil
}

// SplitList splits a comma separated filter, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
